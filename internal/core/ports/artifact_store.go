package ports

import (
	"context"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

// ArtifactStore manages stored image files addressed by opaque references.
// Delete failures are non-fatal by contract: callers log and move on.
type ArtifactStore interface {
	// Store persists the image bytes under a fresh object key derived from
	// the given name hint (prefix + extension) and returns its reference.
	Store(ctx context.Context, nameHint string, data []byte, contentType string) (domain.ArtifactRef, error)
	// Read returns the raw bytes of a stored artifact.
	Read(ctx context.Context, ref domain.ArtifactRef) ([]byte, error)
	// Delete removes a stored artifact.
	Delete(ctx context.Context, ref domain.ArtifactRef) error
}
