package adzuna

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	// Response bodies above this size are rejected.
	maxBodySize = 8 << 20
)

type searchResponse struct {
	Count   int              `json:"count"`
	Results []map[string]any `json:"results"`
}

// search requests result pages until the page cap is reached or the results are exhausted.
func (c *Client) search(ctx context.Context, params SearchParams) ([]*Job, error) {
	params = params.withDefaults()

	q := url.Values{}
	q.Set("app_id", c.appID)
	q.Set("app_key", c.appKey)
	q.Set("what", params.What)
	q.Set("results_per_page", strconv.Itoa(params.ResultsPerPage))
	q.Set("content-type", contentType)

	var items []map[string]any
	for page := 1; page <= params.Pages; page++ {
		response, err := c.getPage(ctx, c.searchURL(params.Country, page), q)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		items = append(items, response.Results...)

		c.logger.Debug("got response from Adzuna",
			zap.Int("page", page),
			zap.Int("results", len(response.Results)),
			zap.Int("count", response.Count),
		)

		if len(response.Results) < params.ResultsPerPage || len(items) >= response.Count {
			break
		}
	}

	var results []*Job
	cfg := &mapstructure.DecoderConfig{
		Result:           &results,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decoding results: %w", err)
	}

	return results, nil
}

func (c *Client) getPage(ctx context.Context, endpoint string, q url.Values) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.URL.RawQuery = q.Encode()

	c.logger.Debug("make request", zap.String("url", redact(req.URL)))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	var response searchResponse
	if err := json.NewDecoder(io.LimitReader(reader, maxBodySize)).Decode(&response); err != nil {
		return nil, err
	}

	return &response, nil
}

// redact hides credentials from logged URLs.
func redact(u *url.URL) string {
	c := *u
	q := c.Query()
	if q.Has("app_key") {
		q.Set("app_key", "REDACTED")
	}
	c.RawQuery = q.Encode()
	return c.String()
}
