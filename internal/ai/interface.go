package ai

import "context"

// Responder answers free text the keyword rules could not handle.
// Implementations must never invent a category outside categories.
type Responder interface {
	Respond(ctx context.Context, message string, history []Turn, categories []string) (*FallbackResult, error)
}
