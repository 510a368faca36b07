package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Listing is a single job posting as supplied by a job source.
type Listing struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	ApplyURL    string `json:"apply_url"`
	Company     string `json:"company,omitempty"`
	Created     string `json:"created,omitempty"`
	// Similarity is the percent score assigned by the similarity step.
	Similarity float64 `json:"similarity,omitempty"`
}

type Listings struct {
	Items []*Listing `json:"items"`
}

// Label is a one-line human readable description of the listing.
func (li *Listing) Label() string {
	parts := []string{li.Title}
	if li.Company != "" {
		parts = append(parts, li.Company)
	}
	if li.Location != "" {
		parts = append(parts, li.Location)
	}
	return strings.Join(parts, " / ")
}

func (l *Listings) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}

// Clone returns a deep copy so steps can mutate listings without touching the caller's data.
func (l *Listings) Clone() *Listings {
	if l == nil {
		return &Listings{}
	}

	cloned := &Listings{Items: make([]*Listing, 0, len(l.Items))}
	for _, item := range l.Items {
		if item == nil {
			continue
		}
		c := *item
		cloned.Items = append(cloned.Items, &c)
	}
	return cloned
}

// Keep retains the listings for which keep returns true and returns the dropped ones.
// Order of the retained listings is preserved.
func (l *Listings) Keep(keep func(*Listing) bool) []*Listing {
	var dropped []*Listing
	kept := l.Items[:0]
	for _, item := range l.Items {
		if keep(item) {
			kept = append(kept, item)
			continue
		}
		dropped = append(dropped, item)
	}

	// Clear the tail so dropped pointers are not retained by the backing array.
	for i := len(kept); i < len(l.Items); i++ {
		l.Items[i] = nil
	}
	l.Items = kept

	return dropped
}

// Exclude drops listings whose apply URL is in urls and returns the dropped URLs.
func (l *Listings) Exclude(urls []string) []string {
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}

	dropped := l.Keep(func(li *Listing) bool {
		_, found := set[li.ApplyURL]
		return !found
	})

	excluded := make([]string, 0, len(dropped))
	for _, li := range dropped {
		excluded = append(excluded, li.ApplyURL)
	}
	return excluded
}

func (l *Listings) FindByURL(u string) *Listing {
	for _, item := range l.Items {
		if item.ApplyURL == u {
			return item
		}
	}
	return nil
}

func (l *Listings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "listings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByLocation groups listings by their location display name.
func (l *Listings) ReportByLocation() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, li := range l.Items {
		key := li.Location
		if key == "" {
			key = "unknown"
		}
		report[key] = append(report[key], map[string]string{
			"title":      li.Title,
			"company":    li.Company,
			"url":        li.ApplyURL,
			"similarity": fmt.Sprintf("%.2f", li.Similarity),
		})
	}
	return report
}
