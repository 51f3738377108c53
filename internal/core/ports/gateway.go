package ports

import (
	"context"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

// TransformGateway is the capability interface over the three external image
// operations. Each call is a single attempt that either produces a stored
// artifact or fails with a *domain.GatewayError; there is no retry layer.
// Implementations receive their API keys at construction so fakes can be
// swapped in for tests.
type TransformGateway interface {
	// RemoveBackground produces a foreground cutout with transparent
	// background from the original product image.
	RemoveBackground(ctx context.Context, original domain.ArtifactRef) (domain.ArtifactRef, error)
	// GenerateBackground synthesises a fresh background image from the
	// resolved prompt text.
	GenerateBackground(ctx context.Context, prompt string) (domain.ArtifactRef, error)
	// Composite resizes the background to the foreground's dimensions
	// (cover-fit, centered) and overlays the foreground on top.
	Composite(ctx context.Context, foreground, background domain.ArtifactRef) (domain.ArtifactRef, error)
}
