// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/biosearch/pkg/types"
)

// QueryFile is a batch of searches kept on disk so a set of queries can be
// rerun without retyping them, e.g.
//
//	defaults:
//	  databases: [NCBI, PubMed]
//	searches:
//	  - query: BRCA1
//	  - query: p53
//	    databases: [UniProt]
//	    organism: Homo sapiens
type QueryFile struct {
	Defaults QueryParams   `yaml:"defaults"`
	Searches []QueryParams `yaml:"searches"`
}

// QueryParams stores one search in a serializable form.
type QueryParams struct {
	Query      string   `yaml:"query,omitempty"`
	Databases  []string `yaml:"databases,omitempty"`
	Organism   string   `yaml:"organism,omitempty"`
	DateFrom   string   `yaml:"date_from,omitempty"`
	DateTo     string   `yaml:"date_to,omitempty"`
	ResultType string   `yaml:"result_type,omitempty"`
	Limit      int      `yaml:"limit,omitempty"`
}

const dateFmt = "2006-01-02"

// ReadQueryFile loads a query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// Requests expands every search, filling unset fields from Defaults, and
// validates the result.
func (qf *QueryFile) Requests() ([]types.SearchRequest, error) {
	reqs := make([]types.SearchRequest, 0, len(qf.Searches))
	for i, p := range qf.Searches {
		req, err := p.withDefaults(qf.Defaults).ToRequest()
		if err != nil {
			return nil, fmt.Errorf("search %d: %w", i+1, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func (p QueryParams) withDefaults(d QueryParams) QueryParams {
	if len(p.Databases) == 0 {
		p.Databases = d.Databases
	}
	if p.Organism == "" {
		p.Organism = d.Organism
	}
	if p.DateFrom == "" {
		p.DateFrom = d.DateFrom
	}
	if p.DateTo == "" {
		p.DateTo = d.DateTo
	}
	if p.ResultType == "" {
		p.ResultType = d.ResultType
	}
	if p.Limit == 0 {
		p.Limit = d.Limit
	}
	return p
}

// ToRequest converts stored QueryParams into a validated SearchRequest.
// Dates must be YYYY-MM-DD.
func (p QueryParams) ToRequest() (types.SearchRequest, error) {
	req := types.NewSearchRequest(p.Query, p.Databases)
	req.Filters = types.Filters{
		Organism:   p.Organism,
		DateFrom:   p.DateFrom,
		DateTo:     p.DateTo,
		ResultType: p.ResultType,
		Limit:      p.Limit,
	}
	for name, v := range map[string]string{"date_from": p.DateFrom, "date_to": p.DateTo} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(dateFmt, v); err != nil {
			return req, fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	if p.Limit < 0 {
		return req, fmt.Errorf("invalid limit %d", p.Limit)
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}
