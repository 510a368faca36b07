package adzuna

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/jobs"
	"github.com/spigell/resume-matcher/internal/logger"
)

const (
	apiURL         = "https://api.adzuna.com"
	userAgent      = "spigell/resume-matcher"
	defaultCountry = "in"
	// Max value accepted by the search endpoint.
	maxPerPage     = 50
	defaultPerPage = 50
)

type Client struct {
	appID      string
	appKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(appID, appKey string, log *zap.Logger) *Client {
	return &Client{
		appID:  strings.TrimSpace(appID),
		appKey: strings.TrimSpace(appKey),
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger.OrNop(log),
		UserAgent: userAgent,
	}
}

// SearchParams configures a job search.
type SearchParams struct {
	What           string `mapstructure:"what" json:"what"`
	Country        string `mapstructure:"country" json:"country"`
	ResultsPerPage int    `mapstructure:"results-per-page" json:"results_per_page"`
	// Pages caps how many result pages are requested.
	Pages int `mapstructure:"pages" json:"pages"`
}

// Search returns the listings for the query or an error.
func (c *Client) Search(ctx context.Context, params SearchParams) (*jobs.Listings, error) {
	if c.appID == "" || c.appKey == "" {
		return nil, errors.New("adzuna app id and app key are required")
	}
	if strings.TrimSpace(params.What) == "" {
		return nil, errors.New("search role is required")
	}

	results, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}

	listings := &jobs.Listings{Items: make([]*jobs.Listing, 0, len(results))}
	for _, job := range results {
		listings.Items = append(listings.Items, job.ToListing())
	}
	return listings, nil
}

// Fetch searches jobs for role and never fails: any error is logged and yields an empty list.
func (c *Client) Fetch(ctx context.Context, role string, params SearchParams) *jobs.Listings {
	params.What = role

	listings, err := c.Search(ctx, params)
	if err != nil {
		c.logger.Warn("fetching jobs failed, continuing with no jobs",
			zap.String("role", role),
			zap.Error(err),
		)
		return &jobs.Listings{}
	}

	c.logger.Info("fetched jobs", zap.String("role", role), zap.Int("count", listings.Len()))
	return listings
}

func (p SearchParams) withDefaults() SearchParams {
	if p.Country = strings.ToLower(strings.TrimSpace(p.Country)); p.Country == "" {
		p.Country = defaultCountry
	}
	if p.ResultsPerPage <= 0 {
		p.ResultsPerPage = defaultPerPage
	}
	if p.ResultsPerPage > maxPerPage {
		p.ResultsPerPage = maxPerPage
	}
	if p.Pages <= 0 {
		p.Pages = 1
	}
	return p
}

func (c *Client) searchURL(country string, page int) string {
	return fmt.Sprintf("%s/v1/api/jobs/%s/search/%d", strings.TrimRight(c.APIURL, "/"), country, page)
}
