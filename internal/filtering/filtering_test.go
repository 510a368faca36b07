package filtering

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/jobs"
	"github.com/spigell/resume-matcher/internal/similarity"
)

// stubScorer returns preset percents keyed by description.
type stubScorer struct {
	mu     sync.Mutex
	scores map[string]float64
	errs   map[string]error
	calls  int
}

func (s *stubScorer) ScorePrepared(_ context.Context, _ *similarity.Reference, job string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err, ok := s.errs[job]; ok {
		return 0, err
	}
	return s.scores[job], nil
}

func listings(items ...*jobs.Listing) *jobs.Listings {
	return &jobs.Listings{Items: items}
}

func titles(l *jobs.Listings) []string {
	out := make([]string, 0, l.Len())
	for _, li := range l.Items {
		out = append(out, li.Title)
	}
	return out
}

func TestDescriptionFilter(t *testing.T) {
	l := listings(
		&jobs.Listing{Title: "a", Description: "text"},
		&jobs.Listing{Title: "b", Description: "  "},
		&jobs.Listing{Title: "c"},
	)

	out, step, err := NewDescription().Apply(context.Background(), l)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if step != (Step{Initial: 3, Dropped: 1, Left: 2}) {
		t.Fatalf("unexpected step: %+v", step)
	}
	// Blank descriptions stay and are scored as zero later.
	if fmt.Sprint(titles(out)) != "[a b]" {
		t.Fatalf("unexpected listings: %v", titles(out))
	}
}

func TestLocationFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filter   string
		location string
		keep     bool
	}{
		{name: "default passes india", filter: "india", location: "Bangalore, India", keep: true},
		{name: "default drops uk", filter: "india", location: "London, UK", keep: false},
		{name: "case insensitive filter", filter: "INDIA", location: "Mumbai, india", keep: true},
		{name: "empty filter keeps all", filter: "", location: "London, UK", keep: true},
		{name: "empty location dropped", filter: "india", location: "", keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := listings(&jobs.Listing{Title: "x", Location: tt.location})
			out, _, err := NewLocation(tt.filter).Apply(context.Background(), l)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := out.Len() == 1; got != tt.keep {
				t.Fatalf("expected keep=%v, got %v", tt.keep, got)
			}
		})
	}
}

func TestExcludeFileFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	dismissed := listings(&jobs.Listing{Title: "old", ApplyURL: "https://old"})
	if err := dismissed.ToExcluded("seen").ToFile(path); err != nil {
		t.Fatalf("writing exclude file: %v", err)
	}

	l := listings(
		&jobs.Listing{Title: "old", ApplyURL: "https://old"},
		&jobs.Listing{Title: "new", ApplyURL: "https://new"},
	)

	out, step, err := NewExcludeFile(path, zap.NewNop()).Apply(context.Background(), l)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if step.Dropped != 1 || out.Items[0].Title != "new" {
		t.Fatalf("unexpected result: %+v %v", step, titles(out))
	}

	out, step, err = NewExcludeFile("", nil).Apply(context.Background(), l)
	if err != nil || step.Dropped != 0 || out.Len() != 1 {
		t.Fatalf("expected no-op without path, got %+v %v", step, err)
	}
}

func TestSimilarityFilterThresholdIsInclusive(t *testing.T) {
	scorer := &stubScorer{scores: map[string]float64{
		"below": 29.994,
		"equal": 30,
		"round": 29.996,
		"above": 88.123,
	}}

	l := listings(
		&jobs.Listing{Title: "below", Description: "below"},
		&jobs.Listing{Title: "equal", Description: "equal"},
		&jobs.Listing{Title: "round", Description: "round"},
		&jobs.Listing{Title: "above", Description: "above"},
	)

	f := NewSimilarity(SimilarityConfig{Threshold: 30, Concurrency: 2}, SimilarityDeps{
		Scorer:    scorer,
		Reference: &similarity.Reference{Text: "resume"},
	})
	if err := f.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	out, step, err := f.Apply(context.Background(), l)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got := titles(out)
	want := []string{"equal", "above"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if step != (Step{Initial: 4, Dropped: 2, Left: 2}) {
		t.Fatalf("unexpected step: %+v", step)
	}
	if out.Items[0].Similarity != 30 || out.Items[1].Similarity != 88.12 {
		t.Fatalf("expected rounded similarity, got %v %v", out.Items[0].Similarity, out.Items[1].Similarity)
	}
}

func TestSimilarityFilterComparesRawScore(t *testing.T) {
	// 29.996 rounds to 30.00 but is below the threshold.
	scorer := &stubScorer{scores: map[string]float64{"almost": 29.996}}
	l := listings(&jobs.Listing{Title: "almost", Description: "almost"})

	f := NewSimilarity(SimilarityConfig{Threshold: 30}, SimilarityDeps{
		Scorer:    scorer,
		Reference: &similarity.Reference{Text: "resume"},
	})

	out, step, err := f.Apply(context.Background(), l)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Len() != 0 || step.Dropped != 1 {
		t.Fatalf("expected listing below threshold to be dropped, got %v", titles(out))
	}
}

func TestSimilarityFilterSkipsRejectedListing(t *testing.T) {
	scorer := &stubScorer{
		scores: map[string]float64{"ok": 50},
		errs:   map[string]error{"bad": fmt.Errorf("too long: %w", ai.ErrInvalidInput)},
	}

	core, observed := observer.New(zapcore.WarnLevel)
	f := NewSimilarity(SimilarityConfig{Threshold: 0}, SimilarityDeps{
		Scorer:    scorer,
		Reference: &similarity.Reference{Text: "resume"},
		Logger:    zap.New(core),
	})

	out, _, err := f.Apply(context.Background(), listings(
		&jobs.Listing{Title: "bad", Description: "bad"},
		&jobs.Listing{Title: "ok", Description: "ok"},
	))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Len() != 1 || out.Items[0].Title != "ok" {
		t.Fatalf("unexpected listings: %v", titles(out))
	}
	if observed.FilterMessage("scoring listing failed. It will be skipped.").Len() != 1 {
		t.Fatalf("expected a warning for the skipped listing")
	}
}

func TestSimilarityFilterAbortsOnProviderFailure(t *testing.T) {
	outage := fmt.Errorf("%w: unreachable", similarity.ErrScoring)
	scorer := &stubScorer{errs: map[string]error{"x": outage}}

	f := NewSimilarity(SimilarityConfig{Threshold: 0}, SimilarityDeps{
		Scorer:    scorer,
		Reference: &similarity.Reference{Text: "resume"},
	})

	_, _, err := f.Apply(context.Background(), listings(&jobs.Listing{Title: "x", Description: "x"}))
	if !errors.Is(err, similarity.ErrScoring) {
		t.Fatalf("expected ErrScoring, got %v", err)
	}
}

func TestSimilarityFilterValidate(t *testing.T) {
	if err := NewSimilarity(SimilarityConfig{}, SimilarityDeps{}).Validate(); err == nil {
		t.Fatal("expected error without scorer")
	}

	f := NewSimilarity(SimilarityConfig{Threshold: math.NaN()}, SimilarityDeps{
		Scorer:    &stubScorer{},
		Reference: &similarity.Reference{},
	})
	if err := f.Validate(); err == nil {
		t.Fatal("expected error for NaN threshold")
	}
}

func TestSimilarityFilterThresholdOutsidePercentRange(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		left      int
	}{
		{name: "above 100 keeps nothing", threshold: 120, left: 0},
		{name: "negative keeps everything", threshold: -5, left: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			scorer := &stubScorer{scores: map[string]float64{"full": 100, "none": 0}}
			f := NewSimilarity(SimilarityConfig{Threshold: tt.threshold}, SimilarityDeps{
				Scorer:    scorer,
				Reference: &similarity.Reference{Text: "resume"},
			})
			if err := f.Validate(); err != nil {
				t.Fatalf("validate: %v", err)
			}

			out, _, err := f.Apply(context.Background(), listings(
				&jobs.Listing{Title: "full", Description: "full"},
				&jobs.Listing{Title: "none", Description: "none"},
			))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if out.Len() != tt.left {
				t.Fatalf("expected %d listings, got %v", tt.left, titles(out))
			}
		})
	}
}

func TestRunFiltersLogsStepsAndSkipsDisabled(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	steps := []Filter{NewDescription(), NewLocation("india")}
	filters := New(steps, zap.New(core))
	filters.DisableByName("location", "testing")

	out, err := filters.RunFilters(context.Background(), listings(
		&jobs.Listing{Title: "a", Description: "d", Location: "London, UK"},
		&jobs.Listing{Title: "b"},
	))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Len() != 1 || out.Items[0].Title != "a" {
		t.Fatalf("unexpected listings: %v", titles(out))
	}

	entries := observed.FilterMessage("filter step").All()
	if len(entries) != 1 {
		t.Fatalf("expected one logged step, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["name"] != "description" || ctx["dropped"] != int64(1) {
		t.Fatalf("unexpected step fields: %v", ctx)
	}

	statuses := filters.Describe()
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Step == nil || statuses[0].Step.Left != 1 {
		t.Fatalf("expected description step info, got %+v", statuses[0])
	}
	if statuses[1].Enabled || statuses[1].Reason != "testing" {
		t.Fatalf("expected disabled location status, got %+v", statuses[1])
	}
}

func TestRunFiltersWrapsValidationError(t *testing.T) {
	filters := New([]Filter{NewSimilarity(SimilarityConfig{}, SimilarityDeps{})}, nil)

	_, err := filters.RunFilters(context.Background(), listings(&jobs.Listing{Title: "a"}))
	if err == nil {
		t.Fatal("expected validation error")
	}
}
