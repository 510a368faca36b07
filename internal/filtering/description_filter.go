package filtering

import (
	"context"

	"github.com/spigell/resume-matcher/internal/jobs"
)

type descriptionFilter struct {
	toggle
}

// NewDescription creates a filter that removes listings without a description.
func NewDescription() Filter {
	return &descriptionFilter{}
}

func (f *descriptionFilter) Name() string { return "description" }

func (f *descriptionFilter) Validate() error { return nil }

func (f *descriptionFilter) Apply(_ context.Context, l *jobs.Listings) (*jobs.Listings, Step, error) {
	initial := l.Len()
	dropped := l.Keep(func(li *jobs.Listing) bool {
		return li.Description != ""
	})

	return l, Step{Initial: initial, Dropped: len(dropped), Left: l.Len()}, nil
}
