package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

const openAIImagesURL = "https://api.openai.com/v1/images/generations"

// promptDirective biases DALL-E toward commercial product-photography
// framing regardless of the user's style text.
const promptDirective = "Professional product photography background: %s. High quality, commercial photography, studio lighting, professional grade."

type imageGenerationRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	Style   string `json:"style"`
}

type imageGenerationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateBackground asks DALL-E 3 for a fresh background matching the
// resolved prompt, downloads the result and stores it as an artifact.
func (g *Gateway) GenerateBackground(ctx context.Context, prompt string) (domain.ArtifactRef, error) {
	ctx, cancel := g.stageCtx(ctx)
	defer cancel()

	payload, err := json.Marshal(imageGenerationRequest{
		Model:   "dall-e-3",
		Prompt:  fmt.Sprintf(promptDirective, prompt),
		N:       1,
		Size:    "1024x1024",
		Quality: "hd",
		Style:   "natural",
	})
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageGenerateBackground, "build request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIImagesURL, bytes.NewReader(payload))
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageGenerateBackground, "build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.OpenAIAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageGenerateBackground, "openai call: %v", err)
	}
	defer resp.Body.Close()

	var out imageGenerationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageGenerateBackground, "decode response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil {
			msg = out.Error.Message
		}
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageGenerateBackground,
			"openai returned %d: %s", resp.StatusCode, msg)
	}
	if len(out.Data) == 0 || out.Data[0].URL == "" {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageGenerateBackground, "openai returned no image")
	}

	img, err := g.download(ctx, out.Data[0].URL)
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageGenerateBackground, "download image: %v", err)
	}

	ref, err := g.store.Store(ctx, "bg", img, "image/png")
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageGenerateBackground, "store background: %v", err)
	}

	g.logger.Debug().Str("artifact", ref.Key).Msg("background generated")
	return ref, nil
}

// download fetches the generated image from OpenAI's short-lived URL.
func (g *Gateway) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
