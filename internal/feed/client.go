package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "hilotrack/internal/platform/http"
	"hilotrack/models"
)

// Client fetches the most recent page of resolved draws from the outcome
// feed and normalizes it into the window the predictor consumes.
type Client struct {
	baseURL    string
	path       string
	pageSize   int
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new feed client
type ClientOptions struct {
	BaseURL         string
	Path            string
	PageSize        int
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new feed client with rate limiting and retries.
func NewClient(opts ClientOptions) *Client {
	httpOpts := httpclient.ClientOptions{
		Timeout:         opts.RequestTimeout,
		RequestsPerSec:  opts.RequestsPerSec,
		MaxRetryTimeout: opts.MaxRetryTimeout,
	}

	if opts.PageSize == 0 {
		opts.PageSize = 20
	}

	return &Client{
		baseURL:    opts.BaseURL,
		path:       opts.Path,
		pageSize:   opts.PageSize,
		httpClient: httpclient.NewClient(httpOpts),
		logger:     log.With().Str("component", "feed_client").Logger(),
	}
}

// pageResponse mirrors the feed's history page payload. number arrives as a
// bare digit or a quoted string depending on the upstream version, so it is
// decoded as json.Number.
type pageResponse struct {
	Data struct {
		List []struct {
			IssueNumber string      `json:"issueNumber"`
			Number      json.Number `json:"number"`
			Color       string      `json:"color"`
		} `json:"list"`
	} `json:"data"`
}

// Recent fetches the first history page and returns it as resolved events,
// newest-first, deduplicated by issue number. The feed order is trusted;
// rows are never re-sorted.
func (c *Client) Recent(ctx context.Context) ([]models.ResolvedEvent, error) {
	q := url.Values{}
	q.Set("pageNo", "1")
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	fetchURL := c.baseURL + c.path + "?" + q.Encode()

	c.logger.Debug().Str("url", fetchURL).Msg("Fetching outcome page")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var page pageResponse
	if err := json.Unmarshal(body, &page); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	if len(page.Data.List) == 0 {
		c.logger.Warn().Str("response", string(body)).Msg("No draws in response")
		return nil, fmt.Errorf("empty feed page")
	}

	seen := make(map[string]struct{}, len(page.Data.List))
	events := make([]models.ResolvedEvent, 0, len(page.Data.List))
	for _, row := range page.Data.List {
		if row.IssueNumber == "" {
			continue
		}
		if _, dup := seen[row.IssueNumber]; dup {
			continue
		}
		n, err := strconv.Atoi(row.Number.String())
		if err != nil {
			c.logger.Warn().Str("issue", row.IssueNumber).Str("number", row.Number.String()).Msg("Skipping row with non-numeric magnitude")
			continue
		}
		seen[row.IssueNumber] = struct{}{}
		events = append(events, models.ResolvedEvent{
			ID:        row.IssueNumber,
			Magnitude: n,
			Category:  models.CategoryFromMagnitude(n),
			ColorTag:  row.Color,
		})
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("no usable rows in feed page")
	}

	c.logger.Debug().Int("count", len(events)).Str("latest", events[0].ID).Msg("Fetched events")
	return events, nil
}
