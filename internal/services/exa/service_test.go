package exa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warmstack/warm/internal/common"
	"github.com/warmstack/warm/internal/interfaces"
)

func newTestExa(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Service{
		client: NewClient("test-key", WithBaseURL(server.URL)),
		logger: common.GetLogger(),
	}
}

func TestSearchPeopleNormalizesResults(t *testing.T) {
	var captured searchRequest
	service := newTestExa(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{
			RequestID: "req-123",
			Results: []searchResult{
				{Title: "Jane Roe | Data Scientist at Acme", URL: "https://linkedin.com/in/janeroe", Author: "Jane Roe"},
				{Title: "John Doe | SRE at Example", URL: "https://linkedin.com/in/johndoe", Author: "John Doe"},
			},
		})
	})

	result := service.SearchPeople(context.Background(), "data scientists in London", 2)

	assert.Equal(t, "people", captured.Category)
	assert.Equal(t, "auto", captured.Type)
	assert.Equal(t, 2, captured.NumResults)
	require.NotNil(t, captured.Contents)
	assert.True(t, captured.Contents.Text)

	assert.Equal(t, "req-123", result.RequestID)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "Jane Roe", result.Results[0].Name, "provider order is preserved")
	assert.Equal(t, "John Doe", result.Results[1].Name)
}

func TestSearchCompaniesSendsSchema(t *testing.T) {
	var captured map[string]interface{}
	service := newTestExa(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{RequestID: "req-456"})
	})

	result := service.SearchCompanies(context.Background(), "robotics startups", 5)
	assert.Equal(t, "req-456", result.RequestID)
	assert.Empty(t, result.Results)

	contents, ok := captured["contents"].(map[string]interface{})
	require.True(t, ok)
	summary, ok := contents["summary"].(map[string]interface{})
	require.True(t, ok)
	schema, ok := summary["schema"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "object", schema["type"])
}

func TestSearchPeopleFailureReturnsSentinel(t *testing.T) {
	service := newTestExa(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	result := service.SearchPeople(context.Background(), "anyone", 5)
	assert.Equal(t, interfaces.ErrorRequestID, result.RequestID)
	assert.NotNil(t, result.Results)
	assert.Empty(t, result.Results)
}

func TestSearchCompaniesFailureReturnsSentinel(t *testing.T) {
	service := newTestExa(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	result := service.SearchCompanies(context.Background(), "anyone", 5)
	assert.Equal(t, interfaces.ErrorRequestID, result.RequestID)
	assert.Empty(t, result.Results)
}

func TestClampResults(t *testing.T) {
	assert.Equal(t, defaultResults, clampResults(0))
	assert.Equal(t, defaultResults, clampResults(-3))
	assert.Equal(t, maxResults, clampResults(100))
	assert.Equal(t, 7, clampResults(7))
}

func TestMissingRequestIDFallsBackToUnknown(t *testing.T) {
	service := newTestExa(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{})
	})

	result := service.SearchPeople(context.Background(), "anyone", 1)
	assert.Equal(t, "unknown", result.RequestID)
}
