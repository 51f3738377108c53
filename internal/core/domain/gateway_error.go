package domain

import "fmt"

// Pipeline stage names, used in gateway errors and metrics labels.
const (
	StageRemoveBackground   = "remove_background"
	StageGenerateBackground = "generate_background"
	StageComposite          = "composite"
)

// GatewayError captures the failure of one remote transform call. Network
// errors, auth failures, content rejections and timeouts are all collapsed
// into a single kind with a descriptive message; the message ends up verbatim
// on the failed generation.
type GatewayError struct {
	Stage   string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// NewGatewayError builds a GatewayError for the given stage.
func NewGatewayError(stage, format string, args ...any) *GatewayError {
	return &GatewayError{Stage: stage, Message: fmt.Sprintf(format, args...)}
}
