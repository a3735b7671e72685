package llm

import (
	"context"
	"iter"

	"github.com/ternarybob/arbor"
	"github.com/warmstack/warm/internal/models"
	"google.golang.org/genai"
)

// GenerateFunc is the provider's streaming content call. It is a standalone
// type so services can swap in a fabricated stream under test.
type GenerateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]

// CitationFunc inspects the final stream chunk's candidate and returns the
// single citation-bearing event for the turn, or nil when no grounding
// metadata was present.
type CitationFunc func(candidate *genai.Candidate) *models.StreamEvent

// EmitEvents drains a provider content stream into the events channel: one
// token event per non-empty text fragment in delivery order, then at most
// one citation event from the final chunk, then exactly one terminal event.
// Provider failures, including the provider stream's own deadline expiring,
// become the terminal error event carrying errMessage; the underlying
// diagnostic goes to the log only. ctx must be the caller's context, not the
// provider stream's: only the caller going away stops the drain without a
// terminal event.
func EmitEvents(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error], events chan<- models.StreamEvent, logger arbor.ILogger, citation CitationFunc, errMessage string) {
	var last *genai.GenerateContentResponse
	failed := false

	for resp, err := range seq {
		if err != nil {
			logger.Error().Err(err).Msg("Gemini stream failed")
			failed = true
			break
		}
		last = resp
		for _, text := range textFragments(resp) {
			if !send(ctx, events, models.TokenEvent(text)) {
				return
			}
		}
	}

	if ctx.Err() != nil {
		return
	}

	if failed {
		send(ctx, events, models.ErrorEvent(errMessage))
		return
	}

	if last != nil && len(last.Candidates) > 0 && citation != nil {
		if ev := citation(last.Candidates[0]); ev != nil {
			if !send(ctx, events, *ev) {
				return
			}
		}
	}

	send(ctx, events, models.DoneEvent())
}

// textFragments extracts the non-empty text parts of one stream chunk
func textFragments(resp *genai.GenerateContentResponse) []string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}

	var fragments []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			fragments = append(fragments, part.Text)
		}
	}
	return fragments
}

// send delivers an event unless the caller has gone away
func send(ctx context.Context, events chan<- models.StreamEvent, ev models.StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
