package gateway

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

const clipdropRemoveBackgroundURL = "https://clipdrop-api.co/remove-background/v1"

// RemoveBackground sends the original product image to Clipdrop and stores
// the returned transparent cutout. The original artifact is owned by the
// upload layer and is never cleaned up here.
func (g *Gateway) RemoveBackground(ctx context.Context, original domain.ArtifactRef) (domain.ArtifactRef, error) {
	ctx, cancel := g.stageCtx(ctx)
	defer cancel()

	img, err := g.store.Read(ctx, original)
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageRemoveBackground, "read original: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image_file", original.Key)
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageRemoveBackground, "build request: %v", err)
	}
	if _, err := part.Write(img); err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageRemoveBackground, "build request: %v", err)
	}
	if err := mw.Close(); err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageRemoveBackground, "build request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, clipdropRemoveBackgroundURL, &body)
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageRemoveBackground, "build request: %v", err)
	}
	req.Header.Set("x-api-key", g.cfg.ClipdropAPIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := g.http.Do(req)
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageRemoveBackground, "clipdrop call: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageRemoveBackground,
			"clipdrop returned %d: %s", resp.StatusCode, string(msg))
	}

	cutout, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageRemoveBackground, "read response: %v", err)
	}

	ref, err := g.store.Store(ctx, "nobg", cutout, "image/png")
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageRemoveBackground, "store cutout: %v", err)
	}

	g.logger.Debug().Str("artifact", ref.Key).Msg("background removed")
	return ref, nil
}
