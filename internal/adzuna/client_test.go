package adzuna

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func result(id int, location string) map[string]any {
	return map[string]any{
		"__CLASS__":    "Adzuna::API::Response::Job",
		"id":           fmt.Sprint(id),
		"title":        fmt.Sprintf("<strong>Data</strong> Analyst %d", id),
		"description":  "Looking for python &amp; data analysis skills",
		"redirect_url": fmt.Sprintf("https://www.adzuna.in/details/%d", id),
		"created":      "2024-05-01T10:00:00Z",
		"salary_min":   500000,
		"location": map[string]any{
			"display_name": location,
			"area":         []string{"India", location},
		},
		"company": map[string]any{"display_name": "Acme"},
	}
}

type fakeAPI struct {
	mu       sync.Mutex
	paths    []string
	queries  []string
	pages    map[string][]map[string]any
	count    int
	gzip     bool
	status   int
	lastAuth string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.queries = append(f.queries, r.URL.RawQuery)
	f.lastAuth = r.URL.Query().Get("app_id")
	f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}

	body, _ := json.Marshal(map[string]any{
		"count":   f.count,
		"results": f.pages[r.URL.Path],
	})

	if f.gzip {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		gz.Write(body)
		return
	}
	w.Write(body)
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c := New("id-1", "key-1", zap.NewNop())
	c.APIURL = srv.URL
	return c
}

func TestSearchSinglePage(t *testing.T) {
	api := &fakeAPI{
		count: 2,
		pages: map[string][]map[string]any{
			"/v1/api/jobs/in/search/1": {result(1, "Mumbai, Maharashtra"), result(2, "Bangalore, Karnataka")},
		},
	}
	c := newTestClient(t, api)

	listings, err := c.Search(context.Background(), SearchParams{What: "data analyst"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if listings.Len() != 2 {
		t.Fatalf("expected 2 listings, got %d", listings.Len())
	}

	first := listings.Items[0]
	if first.Title != "Data Analyst 1" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.Description != "Looking for python & data analysis skills" {
		t.Fatalf("unexpected description: %q", first.Description)
	}
	if first.Location != "Mumbai, Maharashtra" || first.Company != "Acme" || first.ID != "1" {
		t.Fatalf("unexpected listing: %+v", first)
	}
	if first.ApplyURL != "https://www.adzuna.in/details/1" {
		t.Fatalf("unexpected apply url: %q", first.ApplyURL)
	}

	if len(api.paths) != 1 {
		t.Fatalf("expected single request, got %d", len(api.paths))
	}
	for _, want := range []string{"what=data+analyst", "results_per_page=50", "app_key=key-1", "content-type=application%2Fjson"} {
		if !strings.Contains(api.queries[0], want) {
			t.Fatalf("expected %q in query %q", want, api.queries[0])
		}
	}
}

func TestSearchPaginatesUntilCount(t *testing.T) {
	api := &fakeAPI{
		count: 3,
		gzip:  true,
		pages: map[string][]map[string]any{
			"/v1/api/jobs/gb/search/1": {result(1, "London"), result(2, "Leeds")},
			"/v1/api/jobs/gb/search/2": {result(3, "York")},
		},
	}
	c := newTestClient(t, api)

	listings, err := c.Search(context.Background(), SearchParams{What: "go", Country: "GB", ResultsPerPage: 2, Pages: 5})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if listings.Len() != 3 {
		t.Fatalf("expected 3 listings, got %d", listings.Len())
	}
	if len(api.paths) != 2 {
		t.Fatalf("expected 2 requests, got %v", api.paths)
	}
}

func TestSearchRequiresCredentials(t *testing.T) {
	c := New("", "", nil)
	if _, err := c.Search(context.Background(), SearchParams{What: "go"}); err == nil {
		t.Fatal("expected error without credentials")
	}
}

func TestFetchReturnsEmptyOnFailure(t *testing.T) {
	api := &fakeAPI{status: http.StatusUnauthorized}
	c := newTestClient(t, api)

	core, observed := observer.New(zapcore.WarnLevel)
	c.logger = zap.New(core)

	listings := c.Fetch(context.Background(), "data analyst", SearchParams{})
	if listings == nil || listings.Len() != 0 {
		t.Fatalf("expected empty listings, got %+v", listings)
	}

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if !strings.Contains(entries[0].ContextMap()["error"].(string), "401") {
		t.Fatalf("expected status in logged error, got %v", entries[0].ContextMap())
	}
}

func TestRedactHidesKey(t *testing.T) {
	c := New("id", "secret-key", nil)
	req, _ := http.NewRequest(http.MethodGet, c.searchURL("in", 1)+"?app_id=id&app_key=secret-key", nil)

	if got := redact(req.URL); strings.Contains(got, "secret-key") {
		t.Fatalf("expected key to be redacted, got %q", got)
	}
}

func TestWithDefaults(t *testing.T) {
	p := SearchParams{ResultsPerPage: 500}.withDefaults()
	if p.Country != "in" || p.ResultsPerPage != 50 || p.Pages != 1 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}
