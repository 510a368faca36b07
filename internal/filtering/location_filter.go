package filtering

import (
	"context"
	"strings"

	"github.com/spigell/resume-matcher/internal/jobs"
)

type locationFilter struct {
	toggle
	location string
}

// NewLocation creates a filter keeping listings whose location contains the given text, case-insensitively.
// An empty location keeps everything.
func NewLocation(location string) Filter {
	return &locationFilter{location: strings.ToLower(location)}
}

func (f *locationFilter) Name() string { return "location" }

func (f *locationFilter) Validate() error { return nil }

func (f *locationFilter) Apply(_ context.Context, l *jobs.Listings) (*jobs.Listings, Step, error) {
	initial := l.Len()
	dropped := l.Keep(func(li *jobs.Listing) bool {
		return strings.Contains(strings.ToLower(li.Location), f.location)
	})

	return l, Step{Initial: initial, Dropped: len(dropped), Left: l.Len()}, nil
}

func (f *locationFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"location": f.location},
	}
}
