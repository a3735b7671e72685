package exa

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/warmstack/warm/internal/models"
)

const (
	maxSkills       = 10
	maxSkillLen     = 50
	summaryMaxRunes = 250
)

var (
	skillsSectionRe = regexp.MustCompile(`(?s)## Skills\n(.+?)(?:\n##|\z)`)
	skillSplitRe    = regexp.MustCompile(`[•,\n]`)
	locationRe      = regexp.MustCompile(`(?m)^(.+?, .+?) \([A-Z]{2}\)`)
	roleAtCompanyRe = regexp.MustCompile(`(?i)(.+?)\s+(?:at|@)\s+(.+?)(?:\s*\||$)`)
)

// extractSkills pulls the "## Skills" markdown section out of a profile's
// raw text. Tokens longer than maxSkillLen are noise (sentences, disclaimers)
// and are discarded; at most maxSkills survive.
func extractSkills(text string) []string {
	if text == "" {
		return nil
	}

	section := skillsSectionRe.FindStringSubmatch(text)
	if section == nil {
		return nil
	}

	var skills []string
	for _, raw := range skillSplitRe.Split(section[1], -1) {
		skill := strings.TrimSpace(raw)
		if skill == "" || len(skill) > maxSkillLen {
			continue
		}
		skills = append(skills, skill)
		if len(skills) == maxSkills {
			break
		}
	}
	return skills
}

// extractLocation finds a "City, Country (CC)" line and returns the part
// before the country code.
func extractLocation(text string) string {
	if text == "" {
		return ""
	}
	if m := locationRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// parseHeadline splits a profile title like "John Doe | AI Engineer at
// Google" into role and company. The leading name segment before the first
// pipe is dropped first.
func parseHeadline(title string) (role, company string) {
	if title == "" {
		return "", ""
	}

	if idx := strings.Index(title, "|"); idx >= 0 {
		title = strings.TrimSpace(title[idx+1:])
	}

	if m := roleAtCompanyRe.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return title, ""
}

// summarize strips markdown heading markers and clips to summaryMaxRunes.
func summarize(text string) string {
	if text == "" {
		return ""
	}
	clean := strings.TrimSpace(strings.ReplaceAll(text, "#", ""))
	runes := []rune(clean)
	if len(runes) > summaryMaxRunes {
		return string(runes[:summaryMaxRunes]) + "..."
	}
	return clean
}

func isLinkedInURL(url string) bool {
	return strings.Contains(strings.ToLower(url), "linkedin.com")
}

// normalizePerson shapes one raw people-search hit into a PersonCard.
func normalizePerson(res searchResult) models.PersonCard {
	name := res.Author
	if name == "" {
		name = "Unknown Professional"
	}

	role, company := parseHeadline(res.Title)

	return models.PersonCard{
		CardType:    models.CardTypePerson,
		Name:        name,
		Headline:    res.Title,
		CurrentRole: role,
		Company:     company,
		Location:    extractLocation(res.Text),
		LinkedInURL: res.URL,
		Summary:     summarize(res.Text),
		Skills:      extractSkills(res.Text),
		ImageURL:    res.Image,
	}
}

// companySummary is the structured summary Exa returns when the company
// search schema is attached to the request.
type companySummary struct {
	CompanyName        string      `json:"company_name"`
	Industry           string      `json:"industry"`
	FoundingYear       float64     `json:"founding_year"`
	Description        string      `json:"description"`
	Location           string      `json:"location"`
	EstimatedEmployees interface{} `json:"estimated_employees"`
}

// normalizeCompany shapes one raw company-search hit into a CompanyCard,
// preferring the structured summary over the page title when it parses.
func normalizeCompany(res searchResult) models.CompanyCard {
	card := models.CompanyCard{
		CardType: models.CardTypeCompany,
		Name:     res.Title,
		Industry: "Technology",
	}
	if card.Name == "" {
		card.Name = "Unknown Company"
	}

	if res.Summary != "" {
		var summary companySummary
		if err := json.Unmarshal([]byte(res.Summary), &summary); err == nil {
			if summary.CompanyName != "" {
				card.Name = summary.CompanyName
			}
			if summary.Industry != "" {
				card.Industry = summary.Industry
			}
			card.FoundedYear = int(summary.FoundingYear)
			card.Description = summary.Description
			card.Location = summary.Location
			card.EstimatedEmployees = employeesString(summary.EstimatedEmployees)
		}
	}

	if isLinkedInURL(res.URL) {
		card.LinkedInURL = res.URL
	} else {
		card.WebsiteURL = res.URL
	}

	return card
}

// employeesString renders the estimated_employees field, which providers
// return as either a range string ("51-200") or a bare number.
func employeesString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}
