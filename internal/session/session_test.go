// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/biosearch/internal/export"
	"github.com/pdiddy/biosearch/internal/notify"
	"github.com/pdiddy/biosearch/internal/render"
	"github.com/pdiddy/biosearch/pkg/types"
)

// stubSearcher records requests and answers through fn.
type stubSearcher struct {
	mu    sync.Mutex
	calls []types.SearchRequest
	fn    func(ctx context.Context, req types.SearchRequest) (types.ResultSet, error)
}

func (s *stubSearcher) Search(ctx context.Context, req types.SearchRequest) (types.ResultSet, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	return s.fn(ctx, req)
}

func (s *stubSearcher) Calls() []types.SearchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.SearchRequest(nil), s.calls...)
}

func returning(body string) func(context.Context, types.SearchRequest) (types.ResultSet, error) {
	return func(context.Context, types.SearchRequest) (types.ResultSet, error) {
		return types.DecodeResultSet(strings.NewReader(body))
	}
}

func newTestSession(t *testing.T, s *stubSearcher) (*Session, *notify.Center) {
	t.Helper()
	center := notify.NewCenter(notify.WithTTL(time.Hour))
	t.Cleanup(center.Close)
	log := zerolog.New(zerolog.NewTestWriter(t))
	sess := New(s,
		WithNotifier(center),
		WithLogger(log),
		WithClock(func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }),
	)
	return sess, center
}

func messages(c *notify.Center) []string {
	var out []string
	for _, n := range c.Active() {
		out = append(out, string(n.Kind)+": "+n.Message)
	}
	return out
}

const brca1Response = `{"NCBI":[{"id":"672","name":"BRCA1","organism":"Homo sapiens","url":"https://www.ncbi.nlm.nih.gov/gene/672","description":"BRCA1 DNA repair associated"}],"PubMed":{"error":"rate limited"}}`

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		databases []string
		want      string
	}{
		{"empty query", "", []string{"NCBI"}, "warning: " + EmptyQueryMessage},
		{"whitespace query", "  \t ", []string{"NCBI"}, "warning: " + EmptyQueryMessage},
		{"no databases", "BRCA1", nil, "warning: " + NoDatabasesMessage},
		{"both missing reports query", "", nil, "warning: " + EmptyQueryMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubSearcher{fn: returning(`{}`)}
			sess, center := newTestSession(t, stub)

			got := sess.Submit(context.Background(), tt.query, tt.databases)
			assert.Equal(t, Rejected, got)
			assert.Empty(t, stub.Calls(), "no request sent")
			assert.Equal(t, []string{tt.want}, messages(center))

			st := sess.State()
			assert.False(t, st.Visible)
			assert.False(t, st.Loading)
			assert.Zero(t, st.Generation)
		})
	}
}

func TestSubmitBRCA1Scenario(t *testing.T) {
	stub := &stubSearcher{fn: returning(brca1Response)}
	sess, center := newTestSession(t, stub)

	got := sess.Submit(context.Background(), " BRCA1 ", []string{"NCBI", "PubMed"})
	require.Equal(t, Rendered, got)

	calls := stub.Calls()
	require.Len(t, calls, 1, "exactly one outbound request")
	assert.Equal(t, "BRCA1", calls[0].Query)
	assert.Equal(t, []string{"NCBI", "PubMed"}, calls[0].Databases)

	st := sess.State()
	assert.True(t, st.Visible)
	assert.False(t, st.Loading)
	assert.Equal(t, 1, st.ScrollRequests)
	assert.Equal(t, "BRCA1", st.Query)
	require.Len(t, st.View.Tabs, 1)
	assert.Equal(t, "NCBI", st.View.Tabs[0].Database)
	assert.True(t, st.View.Tabs[0].Active)
	assert.Equal(t, []string{"PubMed"}, st.View.Skipped)
	assert.Nil(t, st.View.Panel)

	assert.Equal(t, []string{"success: Search completed. Found results in 1 database(s)."}, messages(center))
	assert.Equal(t, []string{"NCBI", "PubMed"}, sess.Results().Names(), "cache holds the full response")
}

func TestSubmitEmptyResponse(t *testing.T) {
	for _, body := range []string{`{}`, `{"NCBI":[],"PubMed":{"error":"down"}}`} {
		t.Run(body, func(t *testing.T) {
			sess, center := newTestSession(t, &stubSearcher{fn: returning(body)})

			got := sess.Submit(context.Background(), "zzzz", []string{"NCBI", "PubMed"})
			assert.Equal(t, Empty, got)

			st := sess.State()
			assert.Empty(t, st.View.Tabs)
			require.NotNil(t, st.View.Panel)
			assert.Equal(t, render.PanelInfo, st.View.Panel.Level)
			assert.Equal(t, render.NoResultsMessage, st.View.Panel.Message)
			assert.False(t, st.Loading)
			assert.Equal(t, []string{"info: " + render.NoResultsMessage}, messages(center))
		})
	}
}

func TestSubmitFailureKeepsCache(t *testing.T) {
	fail := false
	stub := &stubSearcher{fn: func(ctx context.Context, req types.SearchRequest) (types.ResultSet, error) {
		if fail {
			return types.ResultSet{}, errors.New("connection refused")
		}
		return returning(brca1Response)(ctx, req)
	}}
	sess, center := newTestSession(t, stub)

	require.Equal(t, Rendered, sess.Submit(context.Background(), "BRCA1", []string{"NCBI"}))
	fail = true
	require.Equal(t, Failed, sess.Submit(context.Background(), "TP53", []string{"NCBI"}))

	st := sess.State()
	assert.False(t, st.Loading)
	assert.Empty(t, st.View.Tabs, "previous tabs cleared")
	require.NotNil(t, st.View.Panel)
	assert.Equal(t, render.PanelDanger, st.View.Panel.Level)
	assert.Equal(t, render.SearchErrorMessage, st.View.Panel.Message)
	assert.Len(t, stub.Calls(), 2, "no retry")

	msgs := messages(center)
	require.Len(t, msgs, 2)
	assert.Equal(t, "danger: "+render.SearchErrorMessage, msgs[1])

	assert.Equal(t, []string{"NCBI", "PubMed"}, sess.Results().Names())
}

func TestSubmitReplacesCache(t *testing.T) {
	body := brca1Response
	stub := &stubSearcher{fn: func(ctx context.Context, req types.SearchRequest) (types.ResultSet, error) {
		return returning(body)(ctx, req)
	}}
	sess, _ := newTestSession(t, stub)

	sess.Submit(context.Background(), "BRCA1", []string{"NCBI"})
	body = `{"UniProt":[{"id":"P38398","name":"BRCA1_HUMAN"}]}`
	sess.Submit(context.Background(), "P38398", []string{"UniProt"})

	assert.Equal(t, []string{"UniProt"}, sess.Results().Names(), "replaced, not merged")
}

// gatedSearcher blocks each search until its query's gate is released.
type gatedSearcher struct {
	started chan string
	gates   map[string]chan struct{}
	bodies  map[string]string
}

func (g *gatedSearcher) Search(ctx context.Context, req types.SearchRequest) (types.ResultSet, error) {
	g.started <- req.Query
	select {
	case <-g.gates[req.Query]:
	case <-ctx.Done():
		return types.ResultSet{}, ctx.Err()
	}
	return types.DecodeResultSet(strings.NewReader(g.bodies[req.Query]))
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	g := &gatedSearcher{
		started: make(chan string, 2),
		gates:   map[string]chan struct{}{"first": make(chan struct{}), "second": make(chan struct{})},
		bodies: map[string]string{
			"first":  `{"PubMed":[{"id":"1","title":"old"}]}`,
			"second": `{"NCBI":[{"id":"672","name":"BRCA1"}]}`,
		},
	}
	center := notify.NewCenter(notify.WithTTL(time.Hour))
	defer center.Close()
	sess := New(g, WithNotifier(center))

	outcomes := make(chan Outcome, 2)
	go func() { outcomes <- sess.Submit(context.Background(), "first", []string{"PubMed"}) }()
	require.Equal(t, "first", <-g.started)
	go func() { outcomes <- sess.Submit(context.Background(), "second", []string{"NCBI"}) }()
	require.Equal(t, "second", <-g.started)

	// The older search completes first and must not touch the state.
	close(g.gates["first"])
	assert.Equal(t, Stale, <-outcomes)
	st := sess.State()
	assert.True(t, st.Loading, "loading stays on until the latest search completes")
	assert.Empty(t, st.View.Tabs)
	assert.True(t, sess.Results().IsEmpty())
	assert.Empty(t, center.Active())

	close(g.gates["second"])
	assert.Equal(t, Rendered, <-outcomes)
	st = sess.State()
	assert.False(t, st.Loading)
	assert.Equal(t, uint64(2), st.Generation)
	require.Len(t, st.View.Tabs, 1)
	assert.Equal(t, "NCBI", st.View.Tabs[0].Database)
	assert.Equal(t, []string{"NCBI"}, sess.Results().Names())
}

func TestStaleCompletionAfterLatest(t *testing.T) {
	g := &gatedSearcher{
		started: make(chan string, 2),
		gates:   map[string]chan struct{}{"first": make(chan struct{}), "second": make(chan struct{})},
		bodies: map[string]string{
			"first":  `{"PubMed":[{"id":"1","title":"old"}]}`,
			"second": `{"NCBI":[{"id":"672","name":"BRCA1"}]}`,
		},
	}
	center := notify.NewCenter(notify.WithTTL(time.Hour))
	defer center.Close()
	sess := New(g, WithNotifier(center))

	outcomes := make(chan Outcome, 2)
	go func() { outcomes <- sess.Submit(context.Background(), "first", []string{"PubMed"}) }()
	<-g.started
	go func() { outcomes <- sess.Submit(context.Background(), "second", []string{"NCBI"}) }()
	<-g.started

	close(g.gates["second"])
	assert.Equal(t, Rendered, <-outcomes)
	close(g.gates["first"])
	assert.Equal(t, Stale, <-outcomes)

	st := sess.State()
	require.Len(t, st.View.Tabs, 1)
	assert.Equal(t, "NCBI", st.View.Tabs[0].Database, "late stale response does not overwrite")
	assert.Len(t, center.Active(), 1)
}

func TestSubmitHonorsContext(t *testing.T) {
	g := &gatedSearcher{
		started: make(chan string, 1),
		gates:   map[string]chan struct{}{"slow": make(chan struct{})},
	}
	sess, center := newTestSession(t, &stubSearcher{fn: g.Search})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Outcome)
	go func() { done <- sess.Submit(ctx, "slow", []string{"NCBI"}) }()
	<-g.started
	cancel()

	assert.Equal(t, Failed, <-done)
	assert.False(t, sess.State().Loading)
	assert.Equal(t, []string{"danger: " + render.SearchErrorMessage}, messages(center))
}

func TestExport(t *testing.T) {
	sess, center := newTestSession(t, &stubSearcher{fn: returning(brca1Response)})
	dir := t.TempDir()

	_, err := sess.Export(dir)
	require.ErrorIs(t, err, export.ErrNoResults)
	assert.Equal(t, []string{"warning: No results to export"}, messages(center))
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries, "no file written")

	sess.Submit(context.Background(), "BRCA1", []string{"NCBI", "PubMed"})
	path, err := sess.Export(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "biosearch_results_2026-03-14.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rs, err := types.DecodeResultSet(bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, rs.Equal(sess.Results()))

	msgs := messages(center)
	assert.Equal(t, "success: Results exported successfully", msgs[len(msgs)-1])
}

func TestExportTo(t *testing.T) {
	sess, center := newTestSession(t, &stubSearcher{fn: returning(brca1Response)})

	var buf bytes.Buffer
	_, err := sess.ExportTo(&buf)
	require.ErrorIs(t, err, export.ErrNoResults)
	assert.Zero(t, buf.Len())

	sess.Submit(context.Background(), "BRCA1", []string{"NCBI"})
	name, err := sess.ExportTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "biosearch_results_2026-03-14.json", name)
	assert.Contains(t, buf.String(), "\n  \"NCBI\": [")

	msgs := messages(center)
	assert.Equal(t, "success: Results exported successfully", msgs[len(msgs)-1])
}

func TestClickAndSelected(t *testing.T) {
	sess, _ := newTestSession(t, &stubSearcher{fn: returning(brca1Response)})
	sess.Submit(context.Background(), "BRCA1", []string{"NCBI"})

	assert.False(t, sess.Click("ncbi", 0, render.TargetLink))
	assert.False(t, sess.Click("ncbi", 0, render.TargetCheckbox))
	assert.True(t, sess.Click("ncbi", 0, render.TargetBody))
	assert.Equal(t, []render.Selection{{Database: "NCBI", RecordID: "672"}}, sess.Selected())

	st := sess.State()
	st.View.Tabs[0].Items[0].Checked = false
	assert.Len(t, sess.Selected(), 1, "state snapshot is a copy")

	assert.True(t, sess.Click("ncbi", 0, render.TargetBody))
	assert.Empty(t, sess.Selected())
}

func TestExampleQuery(t *testing.T) {
	tests := []struct {
		badge string
		want  string
	}{
		{"BRCA1", "BRCA1"},
		{"BRCA1 (breast cancer gene)", "BRCA1"},
		{"  insulin receptor ", "insulin"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.badge, func(t *testing.T) {
			assert.Equal(t, tt.want, ExampleQuery(tt.badge))
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "stale", Stale.String())
	assert.Equal(t, "Outcome(42)", Outcome(42).String())
}
