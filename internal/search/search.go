// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search sends a search to a BioSearch search endpoint and decodes
// the per-database result map it returns.
//
// The endpoint fans the query out to the selected databases itself; this
// package issues exactly one POST per search.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/biosearch/internal/httputil"
	"github.com/pdiddy/biosearch/pkg/types"
)

// searchPath is appended to the configured server URL. Declared as a var so
// tests can point the client at a different route.
var searchPath = "/search"

// ErrMalformed reports a response body that is not a valid result set.
var ErrMalformed = types.ErrMalformed

// ErrStatus reports a non-2xx response from the search endpoint.
var ErrStatus = errors.New("search endpoint returned an error status")

// Searcher runs one search and returns its result set.
type Searcher interface {
	Search(ctx context.Context, req types.SearchRequest) (types.ResultSet, error)
}

// Client talks to a BioSearch search endpoint over HTTP.
type Client struct {
	HTTP   *http.Client
	Config types.ClientConfig
	Log    zerolog.Logger
}

// NewClient returns a Client whose HTTP client carries cfg.Timeout.
func NewClient(cfg types.ClientConfig, log zerolog.Logger) *Client {
	return &Client{
		HTTP:   &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
		Log:    log,
	}
}

// Endpoint returns the full search URL.
func (c *Client) Endpoint() string {
	return strings.TrimRight(c.Config.ServerURL, "/") + searchPath
}

// Search posts req as a form and decodes the response. The request is
// validated first so an invalid search never reaches the network. Any
// non-2xx status or malformed body is an error.
func (c *Client) Search(ctx context.Context, req types.SearchRequest) (types.ResultSet, error) {
	if err := req.Validate(); err != nil {
		return types.ResultSet{}, err
	}
	if c.Config.ServerURL == "" {
		return types.ResultSet{}, fmt.Errorf("no search server configured: set client.server_url")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), strings.NewReader(req.Form().Encode()))
	if err != nil {
		return types.ResultSet{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	if c.Config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.Config.UserAgent)
	}
	if c.Config.APIToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.Config.APIToken)
	}

	c.Log.Debug().
		Str("query", req.Query).
		Strs("databases", req.Databases).
		Str("url", httpReq.URL.String()).
		Msg("sending search")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, httpReq, c.Config.RateLimitRetries, c.Log)
	if err != nil {
		return types.ResultSet{}, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body so the message can be logged.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.Log.Debug().Int("status", resp.StatusCode).Str("body", string(snippet)).Msg("search failed")
		return types.ResultSet{}, fmt.Errorf("%w: HTTP %d", ErrStatus, resp.StatusCode)
	}

	rs, err := types.DecodeResultSet(resp.Body)
	if err != nil {
		return types.ResultSet{}, fmt.Errorf("parsing search response: %w", err)
	}
	c.Log.Debug().Int("databases", rs.Len()).Msg("search response decoded")
	return rs, nil
}
