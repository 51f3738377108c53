package ports

import (
	"context"
	"time"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

// SubmitGenerationInput carries all data needed to admit a new generation.
// OriginalImage is an already-stored reference handed over by the upload
// layer. At least one of StyleSlug and CustomPrompt must be present.
type SubmitGenerationInput struct {
	OwnerID       string
	OriginalImage domain.ArtifactRef
	StyleSlug     string
	CustomPrompt  string
}

// SubmitGenerationResult is returned immediately on admission; the pipeline
// runs asynchronously and callers poll for the outcome.
type SubmitGenerationResult struct {
	GenerationID string
	Status       string
	Cost         int
}

// GenerationStatusView is the read-only projection returned by the status
// query. Result fields are populated only in terminal states.
type GenerationStatusView struct {
	GenerationID  string
	Status        string
	OriginalImage domain.ArtifactRef
	FinalImage    *domain.ArtifactRef
	StyleSlug     string
	CustomPrompt  string
	Cost          int
	Error         string
	CreatedAt     time.Time
}

// ListGenerationsResult is one page of an owner's generation history.
type ListGenerationsResult struct {
	Items      []GenerationStatusView
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// GenerationService defines the admission, status query, history, and
// housekeeping operations for generation jobs.
type GenerationService interface {
	Submit(ctx context.Context, input SubmitGenerationInput) (*SubmitGenerationResult, error)
	Get(ctx context.Context, id, ownerID string) (*GenerationStatusView, error)
	Delete(ctx context.Context, id, ownerID string) error
	List(ctx context.Context, ownerID string, page, limit int) (*ListGenerationsResult, error)
}

// PipelineDispatcher hands an admitted generation to the asynchronous
// executor without blocking the caller.
type PipelineDispatcher interface {
	Enqueue(g *domain.Generation)
}
