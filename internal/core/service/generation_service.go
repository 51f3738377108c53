package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/studioshot/backdrop-system/internal/api/metrics"
	"github.com/studioshot/backdrop-system/internal/core/domain"
	"github.com/studioshot/backdrop-system/internal/core/ports"
)

// GenerationService implements admission, status query, history, and
// housekeeping. Admission is synchronous and fast: validation, a credit
// check (advisory, not a reservation), style resolution, one row insert,
// and a non-blocking handoff to the pipeline dispatcher.
type GenerationService struct {
	generations ports.GenerationRepository
	styles      ports.StyleRepository
	credits     ports.CreditService
	dispatcher  ports.PipelineDispatcher
	logger      zerolog.Logger
}

func NewGenerationService(
	generations ports.GenerationRepository,
	styles ports.StyleRepository,
	credits ports.CreditService,
	dispatcher ports.PipelineDispatcher,
	logger zerolog.Logger,
) *GenerationService {
	return &GenerationService{
		generations: generations,
		styles:      styles,
		credits:     credits,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// Submit admits a new generation and returns immediately with its id; the
// pipeline runs asynchronously and the caller polls Get for the outcome.
// No credits are reserved here — settlement re-checks authoritatively.
func (s *GenerationService) Submit(ctx context.Context, input ports.SubmitGenerationInput) (*ports.SubmitGenerationResult, error) {
	if input.OriginalImage.IsZero() {
		return nil, domain.ErrMissingImage
	}
	if input.StyleSlug == "" && input.CustomPrompt == "" {
		return nil, domain.ErrMissingPrompt
	}

	balance, err := s.credits.Balance(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}
	if balance < domain.GenerationCost {
		return nil, domain.ErrInsufficientCredits
	}

	prompt, source, err := s.resolvePrompt(ctx, input.StyleSlug, input.CustomPrompt)
	if err != nil {
		return nil, err
	}

	g := &domain.Generation{
		ID:            uuid.NewString(),
		OwnerID:       input.OwnerID,
		OriginalImage: input.OriginalImage,
		StyleSlug:     input.StyleSlug,
		CustomPrompt:  input.CustomPrompt,
		Prompt:        prompt,
		Cost:          domain.GenerationCost,
		Status:        domain.StatusProcessing,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.generations.Create(ctx, g); err != nil {
		s.logger.Error().Err(err).Msg("failed to create generation")
		return nil, err
	}

	s.dispatcher.Enqueue(g)
	metrics.GenerationsSubmittedTotal.WithLabelValues(source).Inc()
	s.logger.Info().Str("generation_id", g.ID).Str("owner_id", g.OwnerID).Str("source", source).Msg("generation admitted")

	return &ports.SubmitGenerationResult{
		GenerationID: g.ID,
		Status:       string(g.Status),
		Cost:         g.Cost,
	}, nil
}

// resolvePrompt builds the effective prompt. A style template comes first;
// custom text is appended as additional details when both are present.
func (s *GenerationService) resolvePrompt(ctx context.Context, slug, custom string) (prompt, source string, err error) {
	if slug == "" {
		return custom, "custom", nil
	}

	style, err := s.styles.FindBySlug(ctx, slug)
	if err != nil {
		return "", "", err
	}
	if custom == "" {
		return style.PromptTemplate, "style", nil
	}
	return style.PromptTemplate + ". Additional details: " + custom, "combined", nil
}

// Get is the read-only status projection polled by clients. It never
// mutates job state; a failed job is a normal terminal answer, not an error.
func (s *GenerationService) Get(ctx context.Context, id, ownerID string) (*ports.GenerationStatusView, error) {
	g, err := s.generations.FindByIDForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return toStatusView(g), nil
}

// Delete removes a generation record (housekeeping, not pipeline logic).
func (s *GenerationService) Delete(ctx context.Context, id, ownerID string) error {
	return s.generations.Delete(ctx, id, ownerID)
}

// List returns one page of the owner's generation history, newest first.
func (s *GenerationService) List(ctx context.Context, ownerID string, page, limit int) (*ports.ListGenerationsResult, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	items, total, err := s.generations.ListByOwner(ctx, ownerID, page, limit)
	if err != nil {
		return nil, err
	}

	views := make([]ports.GenerationStatusView, len(items))
	for i, g := range items {
		views[i] = *toStatusView(g)
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return &ports.ListGenerationsResult{
		Items:      views,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// toStatusView projects a generation for polling clients: result fields are
// exposed only in their matching terminal state.
func toStatusView(g *domain.Generation) *ports.GenerationStatusView {
	view := &ports.GenerationStatusView{
		GenerationID:  g.ID,
		Status:        string(g.Status),
		OriginalImage: g.OriginalImage,
		StyleSlug:     g.StyleSlug,
		CustomPrompt:  g.CustomPrompt,
		Cost:          g.Cost,
		CreatedAt:     g.CreatedAt,
	}
	switch g.Status {
	case domain.StatusCompleted:
		view.FinalImage = g.FinalImage
	case domain.StatusFailed:
		view.Error = g.Error
	}
	return view
}
