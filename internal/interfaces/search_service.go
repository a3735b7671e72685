package interfaces

import (
	"context"

	"github.com/warmstack/warm/internal/models"
)

// ErrorRequestID is the sentinel request id reported when the search
// provider fails. It is the sole error signal across this boundary; callers
// translate it into a service-unavailable response.
const ErrorRequestID = "error"

// PeopleSearchResult pairs a provider request id with ordered person cards.
type PeopleSearchResult struct {
	RequestID string              `json:"request_id"`
	Results   []models.PersonCard `json:"results"`
}

// CompanySearchResult pairs a provider request id with ordered company cards.
type CompanySearchResult struct {
	RequestID string               `json:"request_id"`
	Results   []models.CompanyCard `json:"results"`
}

// SearchService issues natural-language people/company queries against the
// search provider. Result order matches the provider's returned order. On
// any provider-level failure the result carries RequestID == ErrorRequestID
// and an empty list; no error crosses this boundary.
type SearchService interface {
	SearchPeople(ctx context.Context, query string, numResults int) *PeopleSearchResult
	SearchCompanies(ctx context.Context, query string, numResults int) *CompanySearchResult
}
