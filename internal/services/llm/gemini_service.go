package llm

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/warmstack/warm/internal/common"
	"github.com/warmstack/warm/internal/models"
	"google.golang.org/genai"
)

// systemInstruction frames every chat turn
const systemInstruction = `You are Warm AI, a professional intelligence assistant.
Your goal is to provide accurate, career-focused, and data-driven insights.
Be concise, professional, and helpful.`

// errChatUnavailable is the only error text a chat stream exposes to clients
const errChatUnavailable = "I encountered an error connecting to the AI service."

// GeminiService streams single-shot chat completions from Gemini, selecting
// grounding tools and sampling temperature per chat mode.
type GeminiService struct {
	config   *common.GeminiConfig
	logger   arbor.ILogger
	client   *genai.Client
	timeout  time.Duration
	generate GenerateFunc
}

// NewGeminiService creates a new Gemini chat service instance
func NewGeminiService(config *common.Config, logger arbor.ILogger) (*GeminiService, error) {
	if config.Gemini.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for chat service (set WARM_GEMINI_API_KEY or gemini.api_key in config)")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:  &config.Gemini,
		logger:  logger,
		client:  client,
		timeout: common.ParseDuration(config.Gemini.Timeout, 5*time.Minute),
	}
	service.generate = func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
		return client.Models.GenerateContentStream(ctx, model, contents, cfg)
	}

	logger.Info().
		Str("model", config.Gemini.Model).
		Dur("timeout", service.timeout).
		Msg("Gemini chat service initialized")

	return service, nil
}

// Stream drives one conversational turn. The returned channel carries the
// turn's typed event sequence and closes after the terminal event (or as
// soon as ctx is cancelled).
func (s *GeminiService) Stream(ctx context.Context, message string, mode models.ChatMode, model string) <-chan models.StreamEvent {
	events := make(chan models.StreamEvent)

	go func() {
		defer close(events)

		streamCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		if model == "" {
			model = s.config.Model
		}

		// Grounded answers hew closer to retrieved facts, so grounded modes
		// sample at a lower temperature.
		temperature := s.config.Temperature
		var tools []*genai.Tool
		if mode == models.ChatModeWebSearch {
			temperature = s.config.GroundedTemperature
			tools = append(tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
		}

		config := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr(temperature),
			Tools:             tools,
		}

		s.logger.Info().
			Str("mode", string(mode)).
			Str("model", model).
			Msg("Starting chat stream")

		contents := []*genai.Content{genai.NewContentFromText(message, genai.RoleUser)}
		seq := s.generate(streamCtx, model, contents, config)

		// The per-turn deadline only bounds the provider stream. Emission
		// tracks the caller's ctx so an expired turn still terminates the
		// stream with an error event while the caller is listening.
		EmitEvents(ctx, seq, events, s.logger, webCitationEvent, errChatUnavailable)
	}()

	return events
}

// webCitationEvent wraps the final chunk's web citations, if any
func webCitationEvent(candidate *genai.Candidate) *models.StreamEvent {
	sources := ExtractWebCitations(candidate)
	if len(sources) == 0 {
		return nil
	}
	ev := models.CitationEvent(sources)
	return &ev
}
