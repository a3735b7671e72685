package exa

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warmstack/warm/internal/models"
)

func TestExtractSkills(t *testing.T) {
	text := "# Profile\n\n## Skills\nGo • Distributed Systems, Kubernetes\nSQL\n## Experience\nirrelevant"
	skills := extractSkills(text)
	assert.Equal(t, []string{"Go", "Distributed Systems", "Kubernetes", "SQL"}, skills)
}

func TestExtractSkillsCapsAtTen(t *testing.T) {
	text := "## Skills\na, b, c, d, e, f, g, h, i, j, k, l"
	assert.Len(t, extractSkills(text), 10)
}

func TestExtractSkillsDropsLongTokens(t *testing.T) {
	long := strings.Repeat("x", 60)
	text := "## Skills\nGo, " + long + ", Rust"
	assert.Equal(t, []string{"Go", "Rust"}, extractSkills(text))
}

func TestExtractSkillsMissingSection(t *testing.T) {
	assert.Nil(t, extractSkills("## Experience\nGoogle"))
	assert.Nil(t, extractSkills(""))
}

func TestExtractLocation(t *testing.T) {
	text := "John Doe\nBerlin, Germany (DE)\nEngineer"
	assert.Equal(t, "Berlin, Germany", extractLocation(text))
	assert.Equal(t, "", extractLocation("no location here"))
}

func TestParseHeadline(t *testing.T) {
	role, company := parseHeadline("John Doe | AI Engineer at Google")
	assert.Equal(t, "AI Engineer", role)
	assert.Equal(t, "Google", company)

	role, company = parseHeadline("Jane Roe | Staff Engineer @ Stripe")
	assert.Equal(t, "Staff Engineer", role)
	assert.Equal(t, "Stripe", company)

	role, company = parseHeadline("Freelance Consultant")
	assert.Equal(t, "Freelance Consultant", role)
	assert.Equal(t, "", company)

	role, company = parseHeadline("")
	assert.Equal(t, "", role)
	assert.Equal(t, "", company)
}

func TestSummarizeClipsLongText(t *testing.T) {
	text := "## About\n" + strings.Repeat("a", 300)
	summary := summarize(text)
	assert.True(t, strings.HasSuffix(summary, "..."))
	assert.Len(t, []rune(summary), 253)
	assert.NotContains(t, summary, "#")
}

func TestSummarizeShortTextUnchanged(t *testing.T) {
	assert.Equal(t, "About me", summarize("# About me"))
}

func TestNormalizePersonDefaults(t *testing.T) {
	card := normalizePerson(searchResult{
		URL: "https://linkedin.com/in/someone",
	})
	assert.Equal(t, models.CardTypePerson, card.CardType)
	assert.Equal(t, "Unknown Professional", card.Name)
	assert.Equal(t, "https://linkedin.com/in/someone", card.LinkedInURL)
	assert.Empty(t, card.Skills)
}

func TestNormalizePersonFull(t *testing.T) {
	card := normalizePerson(searchResult{
		Title:  "Jane Roe | Data Scientist at Acme",
		URL:    "https://linkedin.com/in/janeroe",
		Author: "Jane Roe",
		Text:   "Jane Roe\nLondon, United Kingdom (GB)\n## Skills\nPython, ML\n## Experience\nAcme",
		Image:  "https://img.example.com/jane.jpg",
	})
	assert.Equal(t, "Jane Roe", card.Name)
	assert.Equal(t, "Data Scientist", card.CurrentRole)
	assert.Equal(t, "Acme", card.Company)
	assert.Equal(t, "London, United Kingdom", card.Location)
	assert.Equal(t, []string{"Python", "ML"}, card.Skills)
	assert.Equal(t, "https://img.example.com/jane.jpg", card.ImageURL)
}

func TestNormalizeCompanyFromSummary(t *testing.T) {
	card := normalizeCompany(searchResult{
		Title:   "Acme - Home",
		URL:     "https://acme.example.com",
		Summary: `{"company_name":"Acme Robotics","industry":"Robotics","founding_year":2019,"description":"Builds robots","location":"London, UK","estimated_employees":"51-200"}`,
	})
	assert.Equal(t, models.CardTypeCompany, card.CardType)
	assert.Equal(t, "Acme Robotics", card.Name)
	assert.Equal(t, "Robotics", card.Industry)
	assert.Equal(t, 2019, card.FoundedYear)
	assert.Equal(t, "Builds robots", card.Description)
	assert.Equal(t, "51-200", card.EstimatedEmployees)
	assert.Equal(t, "https://acme.example.com", card.WebsiteURL)
	assert.Empty(t, card.LinkedInURL)
}

func TestNormalizeCompanyDefaults(t *testing.T) {
	card := normalizeCompany(searchResult{
		URL:     "https://www.LinkedIn.com/company/acme",
		Summary: "not json",
	})
	assert.Equal(t, "Unknown Company", card.Name)
	assert.Equal(t, "Technology", card.Industry)
	assert.Equal(t, "https://www.LinkedIn.com/company/acme", card.LinkedInURL)
	assert.Empty(t, card.WebsiteURL)
}

func TestNormalizeCompanyNumericEmployees(t *testing.T) {
	card := normalizeCompany(searchResult{
		Title:   "Acme",
		URL:     "https://acme.example.com",
		Summary: `{"company_name":"Acme","industry":"SaaS","estimated_employees":120}`,
	})
	require.Equal(t, "120", card.EstimatedEmployees)
}
