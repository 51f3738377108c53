package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type artifactRefRequest struct {
	Key string `json:"key" validate:"required"`
	URL string `json:"url"`
}

// submitGenerationRequest carries an already-stored image reference from the
// upload layer plus the desired style and/or free-form prompt.
type submitGenerationRequest struct {
	Image        artifactRefRequest `json:"image" validate:"required"`
	StyleSlug    string             `json:"style_slug"`
	CustomPrompt string             `json:"custom_prompt" validate:"max=1000"`
}

type submitGenerationResponse struct {
	GenerationID string `json:"generation_id"`
	Status       string `json:"status"`
	Cost         int    `json:"cost"`
}

type artifactRefResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type generationStatusResponse struct {
	GenerationID string               `json:"generation_id"`
	Status       string               `json:"status"`
	Original     artifactRefResponse  `json:"original_image"`
	FinalImage   *artifactRefResponse `json:"final_image,omitempty"`
	StyleSlug    string               `json:"style_slug,omitempty"`
	CustomPrompt string               `json:"custom_prompt,omitempty"`
	Cost         int                  `json:"cost"`
	Error        string               `json:"error,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listGenerationsResponse struct {
	Data       []generationStatusResponse `json:"data"`
	Pagination paginationResponse         `json:"pagination"`
}
