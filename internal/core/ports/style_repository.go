package ports

import (
	"context"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

// StyleRepository is the read-only lookup over the style-preset catalog.
type StyleRepository interface {
	// FindBySlug returns an active preset or domain.ErrStyleNotFound.
	FindBySlug(ctx context.Context, slug string) (*domain.StylePreset, error)
	// ListActive returns all active presets ordered by display_order.
	ListActive(ctx context.Context) ([]domain.StylePreset, error)
}
