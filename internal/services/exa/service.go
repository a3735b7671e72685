package exa

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/warmstack/warm/internal/common"
	"github.com/warmstack/warm/internal/interfaces"
	"github.com/warmstack/warm/internal/models"
)

const (
	minResults     = 1
	maxResults     = 20
	defaultResults = 5
)

// companySchema asks Exa for a structured per-result summary so company
// cards carry real attributes instead of scraped prose.
var companySchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"company_name":        map[string]interface{}{"type": "string", "description": "Official company name"},
		"industry":            map[string]interface{}{"type": "string", "description": "Primary industry sector"},
		"founding_year":       map[string]interface{}{"type": "number", "description": "Year company was founded"},
		"description":         map[string]interface{}{"type": "string", "description": "Brief company description"},
		"location":            map[string]interface{}{"type": "string", "description": "Headquarters location"},
		"estimated_employees": map[string]interface{}{"type": "string", "description": "Employee count range"},
	},
	"required": []string{"company_name", "industry"},
}

// Service performs professional people and company search against Exa and
// normalizes the raw hits into typed cards. Provider failures never
// propagate as errors: callers get an empty result tagged with the sentinel
// request ID instead.
type Service struct {
	client *Client
	logger arbor.ILogger
}

// NewService creates an Exa search service from application config
func NewService(config *common.Config, logger arbor.ILogger) *Service {
	opts := []ClientOption{
		WithLogger(logger),
		WithTimeout(common.ParseDuration(config.Exa.RequestTimeout, DefaultTimeout)),
	}
	if config.Exa.BaseURL != "" {
		opts = append(opts, WithBaseURL(config.Exa.BaseURL))
	}
	if config.Exa.RateLimit > 0 {
		opts = append(opts, WithRateLimit(config.Exa.RateLimit))
	}

	logger.Info().Str("baseUrl", config.Exa.BaseURL).Msg("Exa search service initialized")

	return &Service{
		client: NewClient(config.Exa.APIKey, opts...),
		logger: logger,
	}
}

// SearchPeople finds professionals matching a natural-language query
func (s *Service) SearchPeople(ctx context.Context, query string, numResults int) *interfaces.PeopleSearchResult {
	numResults = clampResults(numResults)

	s.logger.Info().
		Str("query", query).
		Int("limit", numResults).
		Msg("Exa people search")

	resp, err := s.client.search(ctx, &searchRequest{
		Query:      query,
		Type:       "auto",
		Category:   "people",
		NumResults: numResults,
		Contents:   &contentsConfig{Text: true},
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Exa people search failed")
		return &interfaces.PeopleSearchResult{
			RequestID: interfaces.ErrorRequestID,
			Results:   []models.PersonCard{},
		}
	}

	cards := make([]models.PersonCard, 0, len(resp.Results))
	for _, res := range resp.Results {
		cards = append(cards, normalizePerson(res))
	}

	return &interfaces.PeopleSearchResult{
		RequestID: requestID(resp),
		Results:   cards,
	}
}

// SearchCompanies finds companies matching a natural-language query
func (s *Service) SearchCompanies(ctx context.Context, query string, numResults int) *interfaces.CompanySearchResult {
	numResults = clampResults(numResults)

	s.logger.Info().
		Str("query", query).
		Int("limit", numResults).
		Msg("Exa company search")

	resp, err := s.client.search(ctx, &searchRequest{
		Query:      query,
		Type:       "auto",
		Category:   "company",
		NumResults: numResults,
		Contents:   &contentsConfig{Summary: &summaryConfig{Schema: companySchema}},
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Exa company search failed")
		return &interfaces.CompanySearchResult{
			RequestID: interfaces.ErrorRequestID,
			Results:   []models.CompanyCard{},
		}
	}

	cards := make([]models.CompanyCard, 0, len(resp.Results))
	for _, res := range resp.Results {
		cards = append(cards, normalizeCompany(res))
	}

	return &interfaces.CompanySearchResult{
		RequestID: requestID(resp),
		Results:   cards,
	}
}

func clampResults(n int) int {
	if n <= 0 {
		return defaultResults
	}
	if n < minResults {
		return minResults
	}
	if n > maxResults {
		return maxResults
	}
	return n
}

func requestID(resp *searchResponse) string {
	if resp.RequestID == "" {
		return "unknown"
	}
	return resp.RequestID
}
