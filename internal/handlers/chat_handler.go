package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/warmstack/warm/internal/interfaces"
	"github.com/warmstack/warm/internal/models"
)

// ChatHandler handles conversational streaming requests
type ChatHandler struct {
	chatService interfaces.ChatService
	history     interfaces.HistoryStorage
	logger      arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService interfaces.ChatService, history interfaces.HistoryStorage, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		history:     history,
		logger:      logger,
	}
}

// chatMessageRequest is the POST /api/v1/chat/message payload
type chatMessageRequest struct {
	ConversationID *uint64         `json:"conversation_id"`
	Message        string          `json:"message"`
	Mode           models.ChatMode `json:"mode"`
	Model          string          `json:"model"`
}

// SendMessage handles POST /api/v1/chat/message. The response is an SSE
// stream: a session_created event first when a new conversation starts, then
// the provider's token/citation events, then exactly one done or error
// event. The user turn is committed to history before the provider is
// called; the assistant turn is committed once the stream ends.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode chat request")
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Message field is required")
		return
	}

	if req.Mode == "" {
		req.Mode = models.ChatModeStandard
	}
	if req.Mode != models.ChatModeStandard && req.Mode != models.ChatModeWebSearch {
		WriteError(w, http.StatusBadRequest, "invalid_mode", "Mode must be standard or web_search")
		return
	}

	var (
		session    *models.Session
		newSession bool
		err        error
	)
	if req.ConversationID != nil {
		session, err = h.history.GetSession(r.Context(), *req.ConversationID)
		if errors.Is(err, interfaces.ErrSessionNotFound) {
			WriteError(w, http.StatusNotFound, "session_not_found", "Session not found")
			return
		}
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to load session")
			WriteError(w, http.StatusInternalServerError, "storage_error", "Failed to load session")
			return
		}
	} else {
		session, err = h.history.CreateSession(r.Context(), models.DeriveTitle(req.Message), req.Mode)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to create session")
			WriteError(w, http.StatusInternalServerError, "storage_error", "Failed to create session")
			return
		}
		newSession = true
	}

	// The user turn is durable before the provider sees the message, so a
	// provider failure never loses what the user typed.
	if _, err := h.history.AddMessage(r.Context(), session.ID, models.RoleUser, req.Message, ""); err != nil {
		h.logger.Error().Err(err).Msg("Failed to persist user message")
		WriteError(w, http.StatusInternalServerError, "storage_error", "Failed to persist message")
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "streaming_unsupported", err.Error())
		return
	}

	if newSession {
		sse.WriteEvent(models.SessionCreatedEvent(session.ID, session.Title))
	}

	h.logger.Info().
		Int64("sessionId", int64(session.ID)).
		Str("mode", string(req.Mode)).
		Msg("Chat stream started")

	events := h.chatService.Stream(r.Context(), req.Message, req.Mode, req.Model)
	content, sources, failed := h.relay(sse, events)

	// Nothing beyond the user turn is committed when the client went away
	// mid-stream; a reconnecting client replays from the ledger.
	if r.Context().Err() != nil {
		h.logger.Warn().Int64("sessionId", int64(session.ID)).Msg("Client disconnected during stream")
		return
	}

	if _, err := h.history.AddMessage(r.Context(), session.ID, models.RoleAssistant, content, sources); err != nil {
		h.logger.Error().Err(err).Int64("sessionId", int64(session.ID)).Msg("Failed to persist assistant message")
	}

	if failed {
		h.logger.Warn().Int64("sessionId", int64(session.ID)).Msg("Chat stream ended with error event")
	}
}

// relay forwards stream events to the client while accumulating the
// assistant turn: concatenated token text (or the terminal error text) and
// the serialized citation payload.
func (h *ChatHandler) relay(sse *sseWriter, events <-chan models.StreamEvent) (content string, sources string, failed bool) {
	var text strings.Builder

	for ev := range events {
		if err := sse.WriteEvent(ev); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to write stream event")
		}

		switch ev.Type {
		case models.EventToken:
			if ev.Content != nil {
				text.WriteString(*ev.Content)
			}
		case models.EventCitation:
			if payload, err := json.Marshal(ev.Sources); err == nil {
				sources = string(payload)
			}
		case models.EventFileCitation:
			if ev.Content != nil {
				sources = *ev.Content
			}
		case models.EventError:
			failed = true
			if ev.Content != nil {
				return *ev.Content, "", true
			}
			return "", "", true
		}
	}

	return text.String(), sources, failed
}
