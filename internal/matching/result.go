package matching

import (
	"fmt"

	"github.com/spigell/resume-matcher/internal/filtering"
	"github.com/spigell/resume-matcher/internal/jobs"
	"github.com/spigell/resume-matcher/internal/utils"
)

// Outcome tells why a report has the matches it has.
type Outcome string

const (
	OutcomeMatched     Outcome = "matched"
	OutcomeNoJobs      Outcome = "no_jobs"
	OutcomeEmptyResume Outcome = "empty_resume"
	OutcomeNoMatches   Outcome = "no_matches"
)

// Result is one ranked job match.
type Result struct {
	Title      string  `json:"title"`
	Location   string  `json:"location"`
	Company    string  `json:"company,omitempty"`
	Excerpt    string  `json:"description_excerpt"`
	Similarity float64 `json:"similarity_percent"`
	ApplyURL   string  `json:"apply_url"`
}

// Report is the outcome of one match run.
type Report struct {
	Role       string             `json:"role"`
	Outcome    Outcome            `json:"outcome"`
	Threshold  float64            `json:"threshold"`
	Considered int                `json:"considered"`
	Skills     []string           `json:"skills,omitempty"`
	Matches    []Result           `json:"matches"`
	Steps      []filtering.Status `json:"steps,omitempty"`
}

// Message is the user-facing summary of the outcome.
func (r *Report) Message() string {
	switch r.Outcome {
	case OutcomeNoJobs:
		return "No jobs found for this role."
	case OutcomeEmptyResume:
		return "No skills could be extracted from the resume."
	case OutcomeNoMatches:
		return fmt.Sprintf("No job matches with similarity above %g%%.", r.Threshold)
	default:
		return fmt.Sprintf("Found %d matching jobs.", len(r.Matches))
	}
}

// Listings converts the matches back to listings, for exclude files and reports.
func (r *Report) Listings() *jobs.Listings {
	l := &jobs.Listings{Items: make([]*jobs.Listing, 0, len(r.Matches))}
	for _, m := range r.Matches {
		l.Items = append(l.Items, &jobs.Listing{
			Title:       m.Title,
			Description: m.Excerpt,
			Location:    m.Location,
			Company:     m.Company,
			ApplyURL:    m.ApplyURL,
			Similarity:  m.Similarity,
		})
	}
	return l
}

func newResult(li *jobs.Listing, excerptLength int) Result {
	return Result{
		Title:      li.Title,
		Location:   li.Location,
		Company:    li.Company,
		Excerpt:    utils.Excerpt(li.Description, excerptLength),
		Similarity: li.Similarity,
		ApplyURL:   li.ApplyURL,
	}
}
