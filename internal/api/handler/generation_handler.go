package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/studioshot/backdrop-system/internal/core/domain"
	"github.com/studioshot/backdrop-system/internal/core/ports"
)

// GenerationHandler handles HTTP requests for generation jobs.
type GenerationHandler struct {
	service ports.GenerationService
}

func NewGenerationHandler(service ports.GenerationService) *GenerationHandler {
	return &GenerationHandler{service: service}
}

// Submit handles POST /v1/generations — admits a job and returns 202; the
// client polls Get until a terminal state appears.
//
// @Summary      Submit a new background generation
// @Tags         generations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      submitGenerationRequest  true  "Image reference and style selection"
// @Success      202   {object}  submitGenerationResponse
// @Failure      400   {object}  errorResponse
// @Failure      402   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/generations [post]
func (h *GenerationHandler) Submit(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req submitGenerationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.service.Submit(c.Request().Context(), ports.SubmitGenerationInput{
		OwnerID:       ownerID,
		OriginalImage: domain.ArtifactRef{Key: req.Image.Key, URL: req.Image.URL},
		StyleSlug:     req.StyleSlug,
		CustomPrompt:  req.CustomPrompt,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, submitGenerationResponse{
		GenerationID: result.GenerationID,
		Status:       result.Status,
		Cost:         result.Cost,
	})
}

// Get handles GET /v1/generations/:id — the polling endpoint.
//
// @Summary      Get the status of a generation
// @Tags         generations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Generation id"
// @Success      200  {object}  generationStatusResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/generations/{id} [get]
func (h *GenerationHandler) Get(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	view, err := h.service.Get(c.Request().Context(), c.Param("id"), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStatusResponse(view))
}

// Delete handles DELETE /v1/generations/:id — housekeeping removal.
//
// @Summary      Delete a generation record
// @Tags         generations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Generation id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  errorResponse
// @Router       /v1/generations/{id} [delete]
func (h *GenerationHandler) Delete(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), ownerID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "generation deleted"})
}

// List handles GET /v1/generations — the owner's history, newest first.
//
// @Summary      List the caller's generations
// @Tags         generations
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Items per page (max 100)"
// @Success      200    {object}  listGenerationsResponse
// @Router       /v1/generations [get]
func (h *GenerationHandler) List(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.List(c.Request().Context(), ownerID, page, limit)
	if err != nil {
		return err
	}

	items := make([]generationStatusResponse, len(result.Items))
	for i := range result.Items {
		items[i] = toStatusResponse(&result.Items[i])
	}

	return c.JSON(http.StatusOK, listGenerationsResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// toStatusResponse maps the service projection to the HTTP payload.
func toStatusResponse(v *ports.GenerationStatusView) generationStatusResponse {
	resp := generationStatusResponse{
		GenerationID: v.GenerationID,
		Status:       v.Status,
		Original:     artifactRefResponse{Key: v.OriginalImage.Key, URL: v.OriginalImage.URL},
		StyleSlug:    v.StyleSlug,
		CustomPrompt: v.CustomPrompt,
		Cost:         v.Cost,
		Error:        v.Error,
		CreatedAt:    v.CreatedAt,
	}
	if v.FinalImage != nil {
		resp.FinalImage = &artifactRefResponse{Key: v.FinalImage.Key, URL: v.FinalImage.URL}
	}
	return resp
}
