package ports

import (
	"context"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

// AuthService handles registration and login. Registration grants the trial
// credit allowance through the credit service.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
