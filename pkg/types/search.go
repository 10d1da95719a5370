// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the BioSearch client:
// the search request sent to the search endpoint, the ordered per-database
// result set it returns, and the configuration of every component.
package types

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// Validation errors returned by SearchRequest.Validate.
var (
	ErrEmptyQuery  = errors.New("query is empty")
	ErrNoDatabases = errors.New("no database selected")
)

// SearchRequest is one search as submitted by the user. It lives for a
// single call and is never persisted.
type SearchRequest struct {
	// Query is the trimmed free-text search term.
	Query string `json:"query" yaml:"query"`

	// Databases lists the selected database names in selection order.
	Databases []string `json:"databases" yaml:"databases"`

	// Filters are optional refinements understood by the search endpoint.
	Filters Filters `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// Filters narrows a search. Zero values are omitted from the request.
type Filters struct {
	Organism   string `json:"organism,omitempty" yaml:"organism,omitempty"`
	DateFrom   string `json:"date_from,omitempty" yaml:"date_from,omitempty"`
	DateTo     string `json:"date_to,omitempty" yaml:"date_to,omitempty"`
	ResultType string `json:"result_type,omitempty" yaml:"result_type,omitempty"`
	Limit      int    `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// NewSearchRequest builds a request from raw form state: the query is
// trimmed and blank database entries are dropped.
func NewSearchRequest(query string, databases []string) SearchRequest {
	req := SearchRequest{Query: strings.TrimSpace(query)}
	for _, db := range databases {
		if db = strings.TrimSpace(db); db != "" {
			req.Databases = append(req.Databases, db)
		}
	}
	return req
}

// Validate reports why the request must not be sent, if it must not.
func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	if len(r.Databases) == 0 {
		return ErrNoDatabases
	}
	return nil
}

// Form encodes the request as the search endpoint expects it: one query
// field and one databases field per selected database.
func (r SearchRequest) Form() url.Values {
	form := url.Values{}
	form.Set("query", r.Query)
	for _, db := range r.Databases {
		form.Add("databases", db)
	}
	if r.Filters.Organism != "" {
		form.Set("organism", r.Filters.Organism)
	}
	if r.Filters.DateFrom != "" {
		form.Set("date_from", r.Filters.DateFrom)
	}
	if r.Filters.DateTo != "" {
		form.Set("date_to", r.Filters.DateTo)
	}
	if r.Filters.ResultType != "" {
		form.Set("result_type", r.Filters.ResultType)
	}
	if r.Filters.Limit > 0 {
		form.Set("limit", strconv.Itoa(r.Filters.Limit))
	}
	return form
}
