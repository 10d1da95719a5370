// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session orchestrates one user's searches: it validates input,
// issues the search, tracks the loading and result state, caches the last
// result set for export, and raises notifications for every outcome.
//
// Several searches may be in flight at once. Each accepted submit takes the
// next generation number and only the completion carrying the latest number
// is applied; older completions are discarded.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/biosearch/internal/export"
	"github.com/pdiddy/biosearch/internal/notify"
	"github.com/pdiddy/biosearch/internal/render"
	"github.com/pdiddy/biosearch/internal/search"
	"github.com/pdiddy/biosearch/pkg/types"
)

// Validation messages.
const (
	EmptyQueryMessage  = "Please enter a search term"
	NoDatabasesMessage = "Please select at least one database"
)

// Outcome is how a submit ended.
type Outcome int

const (
	// Rejected means validation failed and no request was sent.
	Rejected Outcome = iota
	// Rendered means at least one database contributed results.
	Rendered
	// Empty means the search succeeded but no database contributed.
	Empty
	// Failed means the request or its response could not be used.
	Failed
	// Stale means a newer submit superseded this one before it completed.
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Rendered:
		return "rendered"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	case Stale:
		return "stale"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// SuccessMessage is the notification raised after a search that rendered n
// database tabs.
func SuccessMessage(n int) string {
	return fmt.Sprintf("Search completed. Found results in %d database(s).", n)
}

// State is what the UI shows for the session.
type State struct {
	// Visible is set once the first search is accepted; the results region
	// stays visible afterwards.
	Visible bool `json:"visible"`

	// Loading is set while the latest search is in flight.
	Loading bool `json:"loading"`

	// ScrollRequests counts requests to scroll the results region into
	// view, one per accepted submit.
	ScrollRequests int `json:"scroll_requests"`

	// Generation is the number of the latest accepted submit.
	Generation uint64 `json:"generation"`

	// Query is the query of the latest accepted submit.
	Query string `json:"query"`

	View render.View `json:"view"`
}

// Session holds the state of one user's searches. It is safe for
// concurrent use.
type Session struct {
	searcher search.Searcher
	renderer *render.Renderer
	notes    *notify.Center
	log      zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	gen     uint64
	state   State
	results types.ResultSet
}

// Option configures a Session.
type Option func(*Session)

// WithRenderer sets the renderer. The default uses the built-in layouts.
func WithRenderer(r *render.Renderer) Option {
	return func(s *Session) { s.renderer = r }
}

// WithNotifier sets the notification center. The default is notify.Default().
func WithNotifier(c *notify.Center) Option {
	return func(s *Session) { s.notes = c }
}

// WithLogger sets the session logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithClock sets the time source used to name export files.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New returns a Session that searches through searcher.
func New(searcher search.Searcher, opts ...Option) *Session {
	s := &Session{
		searcher: searcher,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = render.New(nil, s.log)
	}
	if s.notes == nil {
		s.notes = notify.Default()
	}
	return s
}

// Notifications returns the center the session reports to.
func (s *Session) Notifications() *notify.Center { return s.notes }

// Submit builds a request from raw form input and runs it.
func (s *Session) Submit(ctx context.Context, query string, databases []string) Outcome {
	return s.SubmitRequest(ctx, types.NewSearchRequest(query, databases))
}

// SubmitRequest validates req, clears the previous view, and runs the search.
// It blocks until the search completes; the returned Outcome says whether
// its completion was applied.
func (s *Session) SubmitRequest(ctx context.Context, req types.SearchRequest) Outcome {
	if err := req.Validate(); err != nil {
		s.reject(err)
		return Rejected
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state.Generation = gen
	s.state.Query = req.Query
	s.state.Visible = true
	s.state.Loading = true
	s.state.ScrollRequests++
	s.state.View = render.View{}
	s.mu.Unlock()

	log := s.log.With().Uint64("generation", gen).Str("query", req.Query).Logger()
	log.Info().Strs("databases", req.Databases).Msg("search submitted")

	rs, err := s.searcher.Search(ctx, req)

	s.mu.Lock()
	if latest := s.gen; gen != latest {
		s.mu.Unlock()
		log.Debug().Uint64("latest", latest).Msg("discarding stale search completion")
		return Stale
	}
	s.state.Loading = false
	if err != nil {
		s.state.View = render.View{Panel: render.ErrorPanel()}
		s.mu.Unlock()
		log.Error().Err(err).Msg("search failed")
		s.notes.Notify(render.SearchErrorMessage, notify.Danger)
		return Failed
	}
	s.results = rs
	view := s.renderer.Render(rs)
	s.state.View = view
	s.mu.Unlock()

	if view.Contributing() == 0 {
		log.Info().Int("databases", rs.Len()).Msg("search returned no results")
		s.notes.Notify(render.NoResultsMessage, notify.Info)
		return Empty
	}
	log.Info().
		Int("contributing", view.Contributing()).
		Strs("skipped", view.Skipped).
		Int("tooltips", view.Tooltips()).
		Msg("search rendered")
	s.notes.Notify(SuccessMessage(view.Contributing()), notify.Success)
	return Rendered
}

func (s *Session) reject(err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, types.ErrEmptyQuery):
		msg = EmptyQueryMessage
	case errors.Is(err, types.ErrNoDatabases):
		msg = NoDatabasesMessage
	}
	s.log.Debug().Err(err).Msg("search rejected")
	s.notes.Notify(msg, notify.Warning)
}

// State returns a snapshot of the session state. The view is a copy.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.View = s.state.View.Clone()
	return st
}

// Results returns the cached result set of the last successful search.
func (s *Session) Results() types.ResultSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results.Clone()
}

// Click forwards a click on an item of the current view. It reports
// whether a checkbox changed.
func (s *Session) Click(tabID string, index int, target render.Target) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.View.Click(tabID, index, target)
}

// Selected lists the checked records of the current view.
func (s *Session) Selected() []render.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.View.Selected()
}

// Export writes the cached result set into dir and returns the file path.
// With nothing cached it warns and returns export.ErrNoResults.
func (s *Session) Export(dir string) (string, error) {
	rs := s.Results()
	path, err := export.WriteFile(dir, rs, s.now())
	if err != nil {
		s.exportFailed(err)
		return "", err
	}
	s.log.Info().Str("path", path).Msg("results exported")
	s.notes.Notify(export.SuccessMessage, notify.Success)
	return path, nil
}

// ExportTo writes the cached result set to w and returns the download file
// name.
func (s *Session) ExportTo(w io.Writer) (string, error) {
	rs := s.Results()
	data, err := export.Marshal(rs)
	if err != nil {
		s.exportFailed(err)
		return "", err
	}
	name := export.FileName(s.now())
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	s.notes.Notify(export.SuccessMessage, notify.Success)
	return name, nil
}

func (s *Session) exportFailed(err error) {
	if errors.Is(err, export.ErrNoResults) {
		s.notes.Notify(export.NoResultsMessage, notify.Warning)
		return
	}
	s.log.Error().Err(err).Msg("export failed")
	s.notes.Notify(err.Error(), notify.Danger)
}

// ExampleQuery returns the query an example badge fills in: the first
// whitespace-delimited word of its text.
func ExampleQuery(badge string) string {
	fields := strings.Fields(badge)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
