package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/warmstack/warm/internal/interfaces"
	"github.com/warmstack/warm/internal/models"
)

// SearchHandler serves professional people and company search. Every search
// is persisted as a web_search session so results replay from history like
// any other conversation.
type SearchHandler struct {
	search   interfaces.SearchService
	history  interfaces.HistoryStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search interfaces.SearchService, history interfaces.HistoryStorage, logger arbor.ILogger) *SearchHandler {
	return &SearchHandler{
		search:   search,
		history:  history,
		validate: validator.New(),
		logger:   logger,
	}
}

// searchRequest is the POST /api/v1/search/{people,companies} payload
type searchRequest struct {
	Query      string `json:"query" validate:"required,min=3"`
	NumResults int    `json:"num_results" validate:"omitempty,gte=1,lte=20"`
}

// SearchPeople handles POST /api/v1/search/people
func (h *SearchHandler) SearchPeople(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSearchRequest(w, r)
	if !ok {
		return
	}

	h.logger.Info().Str("query", req.Query).Msg("People search")

	result := h.search.SearchPeople(r.Context(), req.Query, req.NumResults)
	if result.RequestID == interfaces.ErrorRequestID {
		WriteError(w, http.StatusServiceUnavailable, "search_unavailable", "Search provider error")
		return
	}

	h.persistSearch(r, fmt.Sprintf("People: %s", req.Query), req.Query, result.Results)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"request_id": result.RequestID,
		"results":    result.Results,
	})
}

// SearchCompanies handles POST /api/v1/search/companies
func (h *SearchHandler) SearchCompanies(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSearchRequest(w, r)
	if !ok {
		return
	}

	h.logger.Info().Str("query", req.Query).Msg("Company search")

	result := h.search.SearchCompanies(r.Context(), req.Query, req.NumResults)
	if result.RequestID == interfaces.ErrorRequestID {
		WriteError(w, http.StatusServiceUnavailable, "search_unavailable", "Search provider error")
		return
	}

	h.persistSearch(r, fmt.Sprintf("Company: %s", req.Query), req.Query, result.Results)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"request_id": result.RequestID,
		"results":    result.Results,
	})
}

func (h *SearchHandler) decodeSearchRequest(w http.ResponseWriter, r *http.Request) (*searchRequest, bool) {
	if !RequireMethod(w, r, http.MethodPost) {
		return nil, false
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return nil, false
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return nil, false
	}

	return &req, true
}

// persistSearch records a search as a session: the query as the user turn,
// the serialized result cards as the assistant turn. Persistence failures
// are logged but never fail the search response.
func (h *SearchHandler) persistSearch(r *http.Request, title, query string, results interface{}) {
	session, err := h.history.CreateSession(r.Context(), title, models.ChatModeWebSearch)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create search session")
		return
	}

	if _, err := h.history.AddMessage(r.Context(), session.ID, models.RoleUser, query, ""); err != nil {
		h.logger.Error().Err(err).Msg("Failed to persist search query")
		return
	}

	cards, err := json.Marshal(results)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to serialize search results")
		return
	}

	if _, err := h.history.AddMessage(r.Context(), session.ID, models.RoleAssistant, string(cards), ""); err != nil {
		h.logger.Error().Err(err).Msg("Failed to persist search results")
	}
}
