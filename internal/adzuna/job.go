package adzuna

import (
	"html"
	"strings"

	"github.com/spigell/resume-matcher/internal/jobs"
)

// Job is a search result as returned by Adzuna.
type Job struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	RedirectURL string `json:"redirect_url"`
	Created     string `json:"created"`
	Location    struct {
		DisplayName string   `json:"display_name"`
		Area        []string `json:"area"`
	} `json:"location"`
	Company struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Category struct {
		Label string `json:"label"`
		Tag   string `json:"tag"`
	} `json:"category"`
	ContractType string  `json:"contract_type"`
	SalaryMin    float64 `json:"salary_min"`
	SalaryMax    float64 `json:"salary_max"`
}

func (j *Job) ToListing() *jobs.Listing {
	return &jobs.Listing{
		ID:          j.ID,
		Title:       cleanText(j.Title),
		Description: cleanText(j.Description),
		Location:    j.Location.DisplayName,
		ApplyURL:    j.RedirectURL,
		Company:     j.Company.DisplayName,
		Created:     j.Created,
	}
}

// cleanText drops the highlight markup Adzuna puts around matched terms.
func cleanText(s string) string {
	s = strings.NewReplacer("<strong>", "", "</strong>", "").Replace(s)
	return strings.TrimSpace(html.UnescapeString(s))
}
