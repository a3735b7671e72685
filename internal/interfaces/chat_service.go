package interfaces

import (
	"context"

	"github.com/warmstack/warm/internal/models"
)

// ChatService drives a single conversational turn against the language-model
// provider, delivering the response as a typed event stream.
//
// The returned channel yields zero or more token events in provider delivery
// order, at most one citation event (after all tokens, only when grounding
// metadata was present), and exactly one terminal done or error event, then
// closes. Provider failures never surface as Go errors; they become the
// terminal error event. When ctx is cancelled the implementation stops
// pulling from the provider and closes the channel without a terminal event.
type ChatService interface {
	Stream(ctx context.Context, message string, mode models.ChatMode, model string) <-chan models.StreamEvent
}
