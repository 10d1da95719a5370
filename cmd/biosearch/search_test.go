// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/biosearch/pkg/types"
)

func useServer(t *testing.T, status int, body string) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)

	old := cfg
	cfg = types.AppConfig{
		Client: types.ClientConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second},
			ServerURL:  ts.URL,
		},
		Notify: types.NotifyConfig{TTL: time.Second},
	}
	t.Cleanup(func() { cfg = old })
}

func TestRunOneFormats(t *testing.T) {
	useServer(t, http.StatusOK, `{"NCBI":[{"id":"672","name":"BRCA1"}],"PubMed":[]}`)
	req := types.NewSearchRequest("BRCA1", []string{"ncbi", "pubmed"})

	tests := []struct {
		format string
		check  func(t *testing.T, out string)
	}{
		{formatTable, func(t *testing.T, out string) {
			assert.Contains(t, out, "NCBI (1)")
		}},
		{formatJSON, func(t *testing.T, out string) {
			var got map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Contains(t, got, "NCBI")
			assert.Contains(t, got, "PubMed")
		}},
		{formatHTML, func(t *testing.T, out string) {
			assert.Contains(t, out, `id="ncbi-tab"`)
			assert.Contains(t, out, "BRCA1")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var stderr, out bytes.Buffer
			sess, notes, err := newSession(&stderr)
			require.NoError(t, err)
			defer notes.Close()

			require.NoError(t, runOne(context.Background(), sess, req, tt.format, &out))
			tt.check(t, out.String())
			assert.Contains(t, stderr.String(), "[success]")
		})
	}
}

func TestRunOneOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		req        types.SearchRequest
		format     string
		wantErr    error
		wantStderr string
		wantOut    string
	}{
		{"empty query", http.StatusOK, `{}`, types.NewSearchRequest(" ", []string{"ncbi"}), formatTable, errRejected, "[warning]", ""},
		{"no databases", http.StatusOK, `{}`, types.NewSearchRequest("BRCA1", nil), formatTable, errRejected, "[warning]", ""},
		{"server error", http.StatusInternalServerError, `oops`, types.NewSearchRequest("BRCA1", []string{"ncbi"}), formatTable, errFailed, "[danger]", ""},
		{"no results", http.StatusOK, `{"NCBI":[]}`, types.NewSearchRequest("zzz", []string{"ncbi"}), formatTable, nil, "[info]", "No results found"},
		{"no results json", http.StatusOK, `{}`, types.NewSearchRequest("zzz", []string{"ncbi"}), formatJSON, nil, "[info]", "{}\n"},
		{"all databases empty json", http.StatusOK, `{"NCBI":[]}`, types.NewSearchRequest("zzz", []string{"ncbi"}), formatJSON, nil, "[info]", `"NCBI": []`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useServer(t, tt.status, tt.body)
			var stderr, out bytes.Buffer
			sess, notes, err := newSession(&stderr)
			require.NoError(t, err)
			defer notes.Close()

			err = runOne(context.Background(), sess, tt.req, tt.format, &out)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.wantErr), "err = %v, want %v", err, tt.wantErr)
			}
			assert.Contains(t, stderr.String(), tt.wantStderr)
			assert.Contains(t, out.String(), tt.wantOut)
		})
	}
}

func newSearchFlagsCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "search"}
	f := cmd.Flags()
	f.StringSliceP("database", "d", defaultDatabaseValues(), "")
	f.String("organism", "", "")
	f.String("from", "", "")
	f.String("to", "", "")
	f.String("type", "", "")
	f.Int("limit", 0, "")
	require.NoError(t, f.Parse(args))
	return cmd
}

func TestRequestFromFlags(t *testing.T) {
	cmd := newSearchFlagsCmd(t, "-d", "ncbi", "-d", "pdb", "--organism", "Homo sapiens", "--from", "2020-01-01", "--limit", "5")
	req, err := requestFromFlags(cmd, []string{"tumor", "suppressor"})
	require.NoError(t, err)
	assert.Equal(t, "tumor suppressor", req.Query)
	assert.Equal(t, []string{"ncbi", "pdb"}, req.Databases)
	assert.Equal(t, "Homo sapiens", req.Filters.Organism)
	assert.Equal(t, "2020-01-01", req.Filters.DateFrom)
	assert.Equal(t, 5, req.Filters.Limit)
}

func TestRequestFromFlagsPassesEmptyQueryThrough(t *testing.T) {
	_, err := requestFromFlags(newSearchFlagsCmd(t), nil)
	assert.NoError(t, err)
}

func TestRequestFromFlagsBadDate(t *testing.T) {
	_, err := requestFromFlags(newSearchFlagsCmd(t, "--to", "yesterday"), []string{"BRCA1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date_to")
}
