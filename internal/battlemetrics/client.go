// Package battlemetrics queries the BattleMetrics server directory.
package battlemetrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/woozymasta/dzstatus/internal/config"
	"github.com/woozymasta/dzstatus/internal/models"
	"golang.org/x/time/rate"
)

// maxBodySize caps the decoded search response.
const maxBodySize = 16 << 20

// StatusError is returned when the directory answers with a non-success HTTP status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return "battlemetrics: unexpected status " + strconv.Itoa(e.StatusCode)
}

// Client searches one game's servers in the directory.
type Client struct {
	httpClient *http.Client

	// limiter throttles outgoing requests, nil when throttling is disabled.
	limiter *rate.Limiter

	baseURL  string
	game     string
	token    string
	pageSize int
}

// New creates a Client from the upstream configuration.
// A zero timeout keeps the transport default.
func New(cfg config.Upstream) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		game:       cfg.Game,
		token:      cfg.Token,
		pageSize:   cfg.PageSize,
	}

	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}

	return c
}

// SearchURL builds the one-page server search for term scoped to the configured game.
func (c *Client) SearchURL(term string) string {
	q := url.Values{}
	q.Set("filter[game]", c.game)
	q.Set("filter[search]", term)
	q.Set("page[size]", strconv.Itoa(c.pageSize))

	return c.baseURL + "/servers?" + q.Encode()
}

// Search runs the directory search for term and returns the first page of candidates in upstream order.
// A non-success status yields a *StatusError.
func (c *Client) Search(ctx context.Context, term string) (models.CandidateSet, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for upstream quota: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(term), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search servers: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var doc models.SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return doc.Data, nil
}
