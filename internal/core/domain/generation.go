package domain

import (
	"errors"
	"time"
)

// GenerationStatus represents the lifecycle state of a generation job.
type GenerationStatus string

const (
	StatusProcessing GenerationStatus = "processing"
	StatusCompleted  GenerationStatus = "completed"
	StatusFailed     GenerationStatus = "failed"
)

// GenerationCost is the number of credits charged per generation.
const GenerationCost = 1

// validTransitions defines the allowed state machine transitions. A job is
// born processing and reaches exactly one terminal state, never both.
var validTransitions = map[GenerationStatus][]GenerationStatus{
	StatusProcessing: {StatusCompleted, StatusFailed},
}

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrGenerationNotFound = errors.New("generation not found")
var ErrMissingImage = errors.New("original image reference is required")
var ErrMissingPrompt = errors.New("either a style preset or a custom prompt is required")

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s GenerationStatus) CanTransitionTo(next GenerationStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status is a final one.
func (s GenerationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ArtifactRef is an opaque handle to a stored image: the object key inside
// the store plus the public URL clients use to fetch it.
type ArtifactRef struct {
	Key string `json:"key" bson:"key"`
	URL string `json:"url" bson:"url"`
}

// IsZero reports whether the reference points at nothing.
func (r ArtifactRef) IsZero() bool {
	return r.Key == "" && r.URL == ""
}

// Generation is the core aggregate: one user-submitted background-replacement
// job and its lifecycle record. Only the pipeline executor mutates a
// generation after creation, and terminal states are immutable.
type Generation struct {
	ID            string           `json:"id" bson:"_id,omitempty"`
	OwnerID       string           `json:"owner_id" bson:"owner_id"`
	OriginalImage ArtifactRef      `json:"original_image" bson:"original_image"`
	FinalImage    *ArtifactRef     `json:"final_image,omitempty" bson:"final_image,omitempty"`
	StyleSlug     string           `json:"style_slug,omitempty" bson:"style_slug,omitempty"`
	CustomPrompt  string           `json:"custom_prompt,omitempty" bson:"custom_prompt,omitempty"`
	Prompt        string           `json:"-" bson:"prompt"`
	Cost          int              `json:"cost" bson:"cost"`
	Status        GenerationStatus `json:"status" bson:"status"`
	Error         string           `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt     time.Time        `json:"created_at" bson:"created_at"`
}
