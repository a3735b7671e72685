package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/warmstack/warm/internal/interfaces"
	"github.com/warmstack/warm/internal/models"
)

// HistoryHandler serves the session ledger: list, replay, rename, delete.
type HistoryHandler struct {
	history    interfaces.HistoryStorage
	fileSearch interfaces.FileSearchService
	logger     arbor.ILogger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history interfaces.HistoryStorage, fileSearch interfaces.FileSearchService, logger arbor.ILogger) *HistoryHandler {
	return &HistoryHandler{
		history:    history,
		fileSearch: fileSearch,
		logger:     logger,
	}
}

// sessionDetail is a session plus its ordered messages
type sessionDetail struct {
	models.Session
	Messages []models.Message `json:"messages"`
}

// renameRequest is the PATCH /api/v1/sessions/{id} payload
type renameRequest struct {
	Title string `json:"title"`
}

// ListSessions handles GET /api/v1/sessions?skip=&limit=
func (h *HistoryHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 20)

	sessions, err := h.history.ListSessions(r.Context(), skip, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list sessions")
		WriteError(w, http.StatusInternalServerError, "storage_error", "Failed to list sessions")
		return
	}

	if sessions == nil {
		sessions = []models.Session{}
	}
	WriteJSON(w, http.StatusOK, sessions)
}

// GetSession handles GET /api/v1/sessions/{id} and returns the session with
// its full message history in playback order.
func (h *HistoryHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	session, messages, err := h.history.GetSessionWithMessages(r.Context(), id)
	if errors.Is(err, interfaces.ErrSessionNotFound) {
		WriteError(w, http.StatusNotFound, "session_not_found", "Session not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load session")
		WriteError(w, http.StatusInternalServerError, "storage_error", "Failed to load session")
		return
	}

	if messages == nil {
		messages = []models.Message{}
	}
	WriteJSON(w, http.StatusOK, sessionDetail{Session: *session, Messages: messages})
}

// RenameSession handles PATCH /api/v1/sessions/{id}
func (h *HistoryHandler) RenameSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Title field is required")
		return
	}

	session, err := h.history.RenameSession(r.Context(), id, req.Title)
	if errors.Is(err, interfaces.ErrSessionNotFound) {
		WriteError(w, http.StatusNotFound, "session_not_found", "Session not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to rename session")
		WriteError(w, http.StatusInternalServerError, "storage_error", "Failed to rename session")
		return
	}

	WriteJSON(w, http.StatusOK, session)
}

// DeleteSession handles DELETE /api/v1/sessions/{id}: file_search sessions
// get their provider store torn down first, then the session and its
// messages are removed in one transaction.
func (h *HistoryHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	session, err := h.history.GetSession(r.Context(), id)
	if errors.Is(err, interfaces.ErrSessionNotFound) {
		WriteError(w, http.StatusNotFound, "session_not_found", "Session not found")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "storage_error", "Failed to load session")
		return
	}

	if session.FileSearchStoreName != "" {
		h.fileSearch.DeleteStore(r.Context(), session.FileSearchStoreName)
	}

	if err := h.history.DeleteSession(r.Context(), id); err != nil {
		if errors.Is(err, interfaces.ErrSessionNotFound) {
			WriteError(w, http.StatusNotFound, "session_not_found", "Session not found")
			return
		}
		h.logger.Error().Err(err).Msg("Failed to delete session")
		WriteError(w, http.StatusInternalServerError, "storage_error", "Failed to delete session")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "deleted",
		"id":     id,
	})
}

// queryInt parses a non-negative integer query parameter with a fallback
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
