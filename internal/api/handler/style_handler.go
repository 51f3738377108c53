package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studioshot/backdrop-system/internal/core/domain"
	"github.com/studioshot/backdrop-system/internal/core/ports"
)

// StyleHandler exposes the read-only style-preset catalog.
type StyleHandler struct {
	styles ports.StyleRepository
}

func NewStyleHandler(styles ports.StyleRepository) *StyleHandler {
	return &StyleHandler{styles: styles}
}

type styleResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Category       string `json:"category"`
	PromptTemplate string `json:"prompt_template"`
	ThumbnailURL   string `json:"thumbnail_url,omitempty"`
	DisplayOrder   int    `json:"display_order"`
}

type listStylesResponse struct {
	Styles  []styleResponse            `json:"styles"`
	Grouped map[string][]styleResponse `json:"grouped"`
}

// List handles GET /v1/styles — all active presets, plus a by-category view.
//
// @Summary      List active style presets
// @Tags         styles
// @Produce      json
// @Success      200  {object}  listStylesResponse
// @Router       /v1/styles [get]
func (h *StyleHandler) List(c echo.Context) error {
	styles, err := h.styles.ListActive(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]styleResponse, len(styles))
	grouped := make(map[string][]styleResponse)
	for i, s := range styles {
		out[i] = toStyleResponse(s)
		grouped[s.Category] = append(grouped[s.Category], out[i])
	}

	return c.JSON(http.StatusOK, listStylesResponse{Styles: out, Grouped: grouped})
}

// Get handles GET /v1/styles/:slug.
//
// @Summary      Get a single style preset
// @Tags         styles
// @Produce      json
// @Param        slug  path      string  true  "Style slug"
// @Success      200   {object}  map[string]styleResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/styles/{slug} [get]
func (h *StyleHandler) Get(c echo.Context) error {
	style, err := h.styles.FindBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]styleResponse{"style": toStyleResponse(*style)})
}

func toStyleResponse(s domain.StylePreset) styleResponse {
	return styleResponse{
		ID:             s.ID,
		Name:           s.Name,
		Slug:           s.Slug,
		Category:       s.Category,
		PromptTemplate: s.PromptTemplate,
		ThumbnailURL:   s.ThumbnailURL,
		DisplayOrder:   s.DisplayOrder,
	}
}
