package jobs

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

// ExcludedListings is the content of an exclude file.
type ExcludedListings struct {
	Items []*ExcludedListing `json:"items"`
}

type ExcludedListing struct {
	URL        string    `json:"url"`
	Title      string    `json:"title,omitempty"`
	Company    string    `json:"company,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	ExcludedAt time.Time `json:"excluded_at"`
}

func (l *Listings) ToExcluded(reason string) *ExcludedListings {
	excluded := &ExcludedListings{}
	now := time.Now().UTC()
	for _, li := range l.Items {
		excluded.Items = append(excluded.Items, &ExcludedListing{
			URL:        li.ApplyURL,
			Title:      li.Title,
			Company:    li.Company,
			Reason:     reason,
			ExcludedAt: now,
		})
	}
	return excluded
}

// LoadExcluded reads an exclude file. A missing file is an empty list.
func LoadExcluded(path string) (*ExcludedListings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ExcludedListings{}, nil
	}
	if err != nil {
		return nil, err
	}

	excluded := &ExcludedListings{}
	if len(data) == 0 {
		return excluded, nil
	}

	if err := json.Unmarshal(data, excluded); err != nil {
		return nil, err
	}
	return excluded, nil
}

// Append adds listings that are not present yet, keyed by URL.
func (e *ExcludedListings) Append(other *ExcludedListings) {
	seen := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		seen[item.URL] = struct{}{}
	}

	for _, item := range other.Items {
		if _, ok := seen[item.URL]; ok {
			continue
		}
		seen[item.URL] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

func (e *ExcludedListings) URLs() []string {
	urls := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		urls = append(urls, item.URL)
	}
	return urls
}

func (e *ExcludedListings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
