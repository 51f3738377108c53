package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/studioshot/backdrop-system/internal/core/domain"
	"github.com/studioshot/backdrop-system/internal/core/ports"
)

const (
	trialCredits = 3
	trialDays    = 7
)

// AuthService implements registration and login. Registration grants the
// trial allowance through the credit service so the grant shows up in the
// ledger like every other balance change.
type AuthService struct {
	users     ports.UserRepository
	credits   ports.CreditService
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, credits ports.CreditService, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &AuthService{users: users, credits: credits, jwtSecret: jwtSecret, tokenTTL: tokenTTL, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (string, *domain.User, error) {
	if email == "" || password == "" || name == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	expires := now.AddDate(0, 0, trialDays)
	user := &domain.User{
		Email:          email,
		Name:           name,
		PasswordHash:   string(hash),
		Credits:        0,
		TrialUsed:      true,
		TrialExpiresAt: &expires,
		CreatedAt:      now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return "", nil, err
	}

	if err := s.credits.GrantTrial(ctx, created.ID, trialCredits, expires); err != nil {
		// The account exists but has no credits; surface the error so the
		// caller can retry registration-side effects.
		s.logger.Error().Err(err).Str("user_id", created.ID).Msg("failed to grant trial credits")
		return "", nil, err
	}
	created.Credits = trialCredits

	token, err := s.generateToken(created)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user registered")
	return token, created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	// Observing the balance applies lazy trial expiry.
	balance, err := s.credits.Balance(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	user.Credits = balance

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
