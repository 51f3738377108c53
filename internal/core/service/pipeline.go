package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/studioshot/backdrop-system/internal/api/metrics"
	"github.com/studioshot/backdrop-system/internal/core/domain"
	"github.com/studioshot/backdrop-system/internal/core/ports"
)

// Pipeline executes one generation job to its terminal state: background
// removal, background synthesis, compositing, then credit settlement. The
// job row is owned exclusively by its pipeline run; nothing else mutates a
// generation after admission.
type Pipeline struct {
	generations ports.GenerationRepository
	gateway     ports.TransformGateway
	store       ports.ArtifactStore
	credits     ports.CreditService
	logger      zerolog.Logger
}

func NewPipeline(
	generations ports.GenerationRepository,
	gateway ports.TransformGateway,
	store ports.ArtifactStore,
	credits ports.CreditService,
	logger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		generations: generations,
		gateway:     gateway,
		store:       store,
		credits:     credits,
		logger:      logger,
	}
}

// Run drives the three stages in order. Any stage failure moves the job to
// failed with the triggering error captured verbatim; artifacts produced by
// completed prior stages are deleted on a best-effort basis. On full
// success settlement happens before the job is marked completed, so a
// completed job is never visible without its ledger entry.
func (p *Pipeline) Run(ctx context.Context, g *domain.Generation) {
	log := p.logger.With().Str("generation_id", g.ID).Str("owner_id", g.OwnerID).Logger()

	cutout, err := p.stage(ctx, domain.StageRemoveBackground, func(ctx context.Context) (domain.ArtifactRef, error) {
		return p.gateway.RemoveBackground(ctx, g.OriginalImage)
	})
	if err != nil {
		p.fail(ctx, log, g, domain.StageRemoveBackground, err)
		return
	}

	background, err := p.stage(ctx, domain.StageGenerateBackground, func(ctx context.Context) (domain.ArtifactRef, error) {
		return p.gateway.GenerateBackground(ctx, g.Prompt)
	})
	if err != nil {
		p.cleanup(ctx, log, cutout)
		p.fail(ctx, log, g, domain.StageGenerateBackground, err)
		return
	}

	final, err := p.stage(ctx, domain.StageComposite, func(ctx context.Context) (domain.ArtifactRef, error) {
		return p.gateway.Composite(ctx, cutout, background)
	})
	if err != nil {
		p.cleanup(ctx, log, cutout, background)
		p.fail(ctx, log, g, domain.StageComposite, err)
		return
	}

	// Settlement comes first: completed must never be visible without its
	// ledger entry. A failed re-check fails the job instead.
	if err := p.credits.SettleGeneration(ctx, g); err != nil {
		p.cleanup(ctx, log, cutout, background, final)
		p.fail(ctx, log, g, "settlement", err)
		return
	}

	// Intermediates are no longer needed; deletion failures must never flip
	// a settled job to failed.
	p.cleanup(ctx, log, cutout, background)

	if err := p.generations.MarkCompleted(ctx, g.ID, final); err != nil {
		log.Error().Err(err).Msg("failed to mark settled generation completed")
		return
	}

	metrics.GenerationsFinishedTotal.WithLabelValues(string(domain.StatusCompleted), "none").Inc()
	log.Info().Str("final_image", final.Key).Msg("generation completed")
}

// stage times one gateway call.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) (domain.ArtifactRef, error)) (domain.ArtifactRef, error) {
	timer := prometheus.NewTimer(metrics.StageDuration.WithLabelValues(name))
	defer timer.ObserveDuration()
	return fn(ctx)
}

// fail records the terminal failure on the job. The error text is stored
// verbatim and surfaced to the owner through the status query.
func (p *Pipeline) fail(ctx context.Context, log zerolog.Logger, g *domain.Generation, stage string, cause error) {
	if err := p.generations.MarkFailed(ctx, g.ID, cause.Error()); err != nil {
		log.Error().Err(err).Str("stage", stage).Msg("failed to record generation failure")
		return
	}
	metrics.GenerationsFinishedTotal.WithLabelValues(string(domain.StatusFailed), stage).Inc()
	log.Warn().Err(cause).Str("stage", stage).Msg("generation failed")
}

// cleanup deletes intermediate artifacts best-effort; failures are logged
// and never propagated.
func (p *Pipeline) cleanup(ctx context.Context, log zerolog.Logger, refs ...domain.ArtifactRef) {
	for _, ref := range refs {
		if ref.IsZero() {
			continue
		}
		if err := p.store.Delete(ctx, ref); err != nil {
			log.Warn().Err(err).Str("artifact", ref.Key).Msg("failed to delete intermediate artifact")
		}
	}
}
