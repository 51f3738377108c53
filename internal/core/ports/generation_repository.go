package ports

import (
	"context"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

// GenerationRepository defines persistence operations for generation jobs.
// Terminal transitions are conditional on the job still being in processing
// state, which makes the status monotonic at the storage layer.
type GenerationRepository interface {
	Create(ctx context.Context, g *domain.Generation) error
	// FindByIDForOwner retrieves a generation scoped to its owner; other
	// users' jobs are indistinguishable from missing ones.
	FindByIDForOwner(ctx context.Context, id, ownerID string) (*domain.Generation, error)
	// MarkCompleted transitions processing → completed and records the final
	// artifact. Returns domain.ErrInvalidTransition when the job is already
	// terminal.
	MarkCompleted(ctx context.Context, id string, final domain.ArtifactRef) error
	// MarkFailed transitions processing → failed with the failure reason.
	// Returns domain.ErrInvalidTransition when the job is already terminal.
	MarkFailed(ctx context.Context, id string, reason string) error
	// Delete removes a generation owned by ownerID (housekeeping).
	Delete(ctx context.Context, id, ownerID string) error
	// ListByOwner returns a page of the owner's generations, newest first,
	// plus the total count.
	ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]*domain.Generation, int64, error)
}
