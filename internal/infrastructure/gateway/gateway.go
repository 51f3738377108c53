// Package gateway implements the external transform operations: background
// removal via the Clipdrop API, background synthesis via DALL-E 3, and local
// compositing. Each call is a single attempt bounded by the configured stage
// timeout; failures surface as *domain.GatewayError with the remote message
// attached.
package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/studioshot/backdrop-system/internal/core/ports"
)

// Config carries the gateway credentials and limits. Keys are injected at
// construction; there is no process-wide API-key state.
type Config struct {
	ClipdropAPIKey string
	OpenAIAPIKey   string
	StageTimeout   time.Duration
}

type Gateway struct {
	cfg    Config
	http   *http.Client
	store  ports.ArtifactStore
	logger zerolog.Logger
}

// New builds a Gateway backed by the given artifact store. The HTTP client
// carries no timeout of its own; each stage derives a bounded context.
func New(cfg Config, store ports.ArtifactStore, logger zerolog.Logger) *Gateway {
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = 2 * time.Minute
	}
	return &Gateway{
		cfg:    cfg,
		http:   &http.Client{},
		store:  store,
		logger: logger,
	}
}

// stageCtx bounds one remote call; a timeout is reported as a stage failure.
func (g *Gateway) stageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.cfg.StageTimeout)
}
