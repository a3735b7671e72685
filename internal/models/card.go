package models

// CardType tags a search result with its record shape.
type CardType string

const (
	CardTypePerson  CardType = "person"
	CardTypeCompany CardType = "company"
)

// PersonCard is a normalized people-search result.
type PersonCard struct {
	CardType    CardType `json:"card_type"`
	Name        string   `json:"name"`
	Headline    string   `json:"headline,omitempty"`
	CurrentRole string   `json:"current_role,omitempty"`
	Company     string   `json:"company,omitempty"`
	Location    string   `json:"location,omitempty"`
	LinkedInURL string   `json:"linkedin_url,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Skills      []string `json:"skills"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// CompanyCard is a normalized company-search result. Exactly one of
// WebsiteURL / LinkedInURL is populated, depending on whether the result's
// primary URL points at the professional network.
type CompanyCard struct {
	CardType           CardType `json:"card_type"`
	Name               string   `json:"name"`
	Industry           string   `json:"industry"`
	FoundedYear        int      `json:"founded_year,omitempty"`
	Description        string   `json:"description,omitempty"`
	Location           string   `json:"location,omitempty"`
	WebsiteURL         string   `json:"website_url,omitempty"`
	LinkedInURL        string   `json:"linkedin_url,omitempty"`
	EstimatedEmployees string   `json:"estimated_employees,omitempty"`
}
