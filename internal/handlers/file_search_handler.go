package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/warmstack/warm/internal/interfaces"
	"github.com/warmstack/warm/internal/models"
)

// maxUploadBytes bounds document uploads (50 MB).
const maxUploadBytes = 50 << 20

// FileSearchHandler handles document upload, document-grounded chat and
// file-search session teardown.
type FileSearchHandler struct {
	fileSearch interfaces.FileSearchService
	history    interfaces.HistoryStorage
	logger     arbor.ILogger
}

// NewFileSearchHandler creates a new file search handler
func NewFileSearchHandler(fileSearch interfaces.FileSearchService, history interfaces.HistoryStorage, logger arbor.ILogger) *FileSearchHandler {
	return &FileSearchHandler{
		fileSearch: fileSearch,
		history:    history,
		logger:     logger,
	}
}

// fileSearchChatRequest is the POST /api/v1/file-search/chat payload
type fileSearchChatRequest struct {
	SessionID uint64 `json:"session_id"`
	Message   string `json:"message"`
	Model     string `json:"model"`
}

// Upload handles POST /api/v1/file-search/upload. The multipart "file" part
// is spooled to a temp file, indexed into a fresh provider store, and a
// file_search session carrying the store reference is created. The call
// blocks until indexing finishes.
func (h *FileSearchHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "No file provided")
		return
	}

	h.logger.Info().Str("file", header.Filename).Msg("File upload request")

	tempPath, err := spoolUpload(file, header.Filename)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to spool upload")
		WriteError(w, http.StatusInternalServerError, "upload_failed", "Failed to save file")
		return
	}
	defer os.Remove(tempPath)

	storeName, fileName, err := h.fileSearch.Index(r.Context(), tempPath, header.Filename)
	if err != nil {
		if errors.Is(err, interfaces.ErrIndexingTimeout) {
			WriteError(w, http.StatusGatewayTimeout, "indexing_timeout", "Document indexing timed out")
			return
		}
		h.logger.Error().Err(err).Str("file", header.Filename).Msg("Failed to index document")
		WriteError(w, http.StatusBadGateway, "provider_error", "Failed to index file")
		return
	}

	session, err := h.history.CreateSession(r.Context(), fileTitle(header.Filename), models.ChatModeFileSearch)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create file search session")
		WriteError(w, http.StatusInternalServerError, "storage_error", "Failed to create session")
		return
	}

	if err := h.history.SetFileSearchMetadata(r.Context(), session.ID, storeName, fileName); err != nil {
		h.logger.Error().Err(err).Int64("sessionId", int64(session.ID)).Msg("Failed to store file search metadata")
		WriteError(w, http.StatusInternalServerError, "storage_error", "Failed to store session metadata")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": session.ID,
		"store_name": storeName,
		"file_name":  fileName,
		"status":     "indexed",
	})
}

// Chat handles POST /api/v1/file-search/chat: an SSE stream of the answer
// grounded in the session's indexed document, with the same persistence
// contract as the main chat endpoint.
func (h *FileSearchHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req fileSearchChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Message field is required")
		return
	}

	session, err := h.history.GetSession(r.Context(), req.SessionID)
	if errors.Is(err, interfaces.ErrSessionNotFound) {
		WriteError(w, http.StatusNotFound, "session_not_found", "Session not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load session")
		WriteError(w, http.StatusInternalServerError, "storage_error", "Failed to load session")
		return
	}

	if session.FileSearchStoreName == "" {
		WriteError(w, http.StatusBadRequest, "no_file", "No file uploaded for this session")
		return
	}

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

	h.logger.Info().
		Int64("sessionId", int64(session.ID)).
		Str("store", session.FileSearchStoreName).
		Msg("File search chat started")

	events := h.fileSearch.Query(r.Context(), session.FileSearchStoreName, req.Message, req.Model)

	var text strings.Builder
	var sources string
	for ev := range events {
		if err := sse.WriteEvent(ev); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to write stream event")
		}
		switch ev.Type {
		case models.EventToken:
			if ev.Content != nil {
				text.WriteString(*ev.Content)
			}
		case models.EventFileCitation:
			if ev.Content != nil {
				sources = *ev.Content
			}
		case models.EventError:
			if ev.Content != nil {
				text.Reset()
				text.WriteString(*ev.Content)
			}
			sources = ""
		}
	}

	if r.Context().Err() != nil {
		h.logger.Warn().Int64("sessionId", int64(session.ID)).Msg("Client disconnected during stream")
		return
	}

	if _, err := h.history.AddMessage(r.Context(), session.ID, models.RoleAssistant, text.String(), sources); err != nil {
		h.logger.Error().Err(err).Int64("sessionId", int64(session.ID)).Msg("Failed to persist assistant message")
	}
}

// DeleteSession handles DELETE /api/v1/file-search/sessions/{id}: tears down
// the provider store, then cascades the session out of history. Store
// teardown is best-effort and never blocks the delete.
func (h *FileSearchHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

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
		WriteError(w, http.StatusInternalServerError, "storage_error", "Failed to delete session")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "deleted",
		"session_id": id,
	})
}

// spoolUpload copies an uploaded part to a temp file, preserving the
// original extension so the provider can detect the document type.
func spoolUpload(file io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "warm-upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// fileTitle derives a session title from an uploaded file name
func fileTitle(filename string) string {
	return fmt.Sprintf("File: %s", models.DeriveTitle(filename))
}
