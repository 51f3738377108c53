package domain

import "errors"

var ErrStyleNotFound = errors.New("style preset not found")

// StylePreset is a curated background style. Presets are read-only to this
// service; the catalog is maintained out of band.
type StylePreset struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Category       string `json:"category"`
	PromptTemplate string `json:"prompt_template"`
	ThumbnailURL   string `json:"thumbnail_url,omitempty"`
	DisplayOrder   int    `json:"display_order"`
	Active         bool   `json:"-"`
}
