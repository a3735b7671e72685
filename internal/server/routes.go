package server

import (
	"net/http"
)

// setupRoutes wires the API surface onto a ServeMux
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Infrastructure
	mux.HandleFunc("/api/v1/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/v1/version", s.app.APIHandler.VersionHandler)

	// Chat (SSE)
	mux.HandleFunc("/api/v1/chat/message", s.app.ChatHandler.SendMessage)

	// File search
	mux.HandleFunc("/api/v1/file-search/upload", s.app.FileSearchHandler.Upload)
	mux.HandleFunc("/api/v1/file-search/chat", s.app.FileSearchHandler.Chat)
	mux.HandleFunc("/api/v1/file-search/sessions/", s.app.FileSearchHandler.DeleteSession) // DELETE /{id}

	// Professional search
	mux.HandleFunc("/api/v1/search/people", s.app.SearchHandler.SearchPeople)
	mux.HandleFunc("/api/v1/search/companies", s.app.SearchHandler.SearchCompanies)

	// History ledger
	mux.HandleFunc("/api/v1/sessions", s.app.HistoryHandler.ListSessions)
	mux.HandleFunc("/api/v1/sessions/", s.handleSessionRoutes) // GET/PATCH/DELETE /{id}

	// Catch-all for unknown API paths
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleSessionRoutes dispatches /api/v1/sessions/{id} by method
func (s *Server) handleSessionRoutes(w http.ResponseWriter, r *http.Request) {
	if len(r.URL.Path) <= len("/api/v1/sessions/") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.app.HistoryHandler.GetSession(w, r)
	case http.MethodPatch:
		s.app.HistoryHandler.RenameSession(w, r)
	case http.MethodDelete:
		s.app.HistoryHandler.DeleteSession(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
