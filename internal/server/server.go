// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server serves the BioSearch web UI: the search page, form
// submission, result selection, notification dismissal, and JSON export,
// all bound to one Session.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/pdiddy/biosearch/internal/export"
	"github.com/pdiddy/biosearch/internal/render"
	"github.com/pdiddy/biosearch/internal/session"
	"github.com/pdiddy/biosearch/pkg/types"
)

// DefaultDatabases are the form checkboxes when none are configured.
var DefaultDatabases = []types.DatabaseOption{
	{Value: "ncbi", Label: "NCBI", Checked: true},
	{Value: "pubmed", Label: "PubMed", Checked: true},
	{Value: "uniprot", Label: "UniProt", Checked: true},
	{Value: "drugbank", Label: "DrugBank"},
	{Value: "kegg", Label: "KEGG"},
	{Value: "pdb", Label: "PDB"},
	{Value: "ensembl", Label: "Ensembl"},
}

// DefaultExamples are the example badges when none are configured.
var DefaultExamples = []string{"BRCA1 (gene)", "insulin (protein)", "aspirin (drug)", "p53 (tumor suppressor)"}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// SelectResponse is the body of POST /ui/select.
type SelectResponse struct {
	Changed  bool               `json:"changed"`
	Selected []render.Selection `json:"selected"`
}

// ErrorResponse is the JSON body of a failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server binds a Session to HTTP routes.
type Server struct {
	session   *session.Session
	cfg       types.ServeConfig
	log       zerolog.Logger
	page      *template.Template
	container *restful.Container
}

// New builds the server and registers its routes.
func New(sess *session.Session, cfg types.ServeConfig, log zerolog.Logger) (*Server, error) {
	page, err := parsePage()
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	if len(cfg.Databases) == 0 {
		cfg.Databases = DefaultDatabases
	}
	if len(cfg.Examples) == 0 {
		cfg.Examples = DefaultExamples
	}
	s := &Server{
		session:   sess,
		cfg:       cfg,
		log:       log,
		page:      page,
		container: restful.NewContainer(),
	}
	s.container.Filter(s.logRequest)
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	ws := new(restful.WebService)
	ws.Path("/").Produces(restful.MIME_JSON, "text/html")

	ws.Route(ws.GET("/").
		To(s.index).
		Doc("Search page").
		Param(ws.QueryParameter("example", "Example badge text; its first word prefills the query").Required(false)).
		Produces("text/html"))

	ws.Route(ws.POST("/ui/search").
		To(s.search).
		Doc("Submit a search and render the page with its results").
		Consumes("application/x-www-form-urlencoded").
		Produces("text/html"))

	ws.Route(ws.GET("/ui/export").
		To(s.export).
		Doc("Download the last result set as JSON").
		Produces(restful.MIME_JSON, "text/html"))

	ws.Route(ws.POST("/ui/select").
		To(s.selectItem).
		Doc("Click an item of the current view").
		Consumes("application/x-www-form-urlencoded").
		Produces(restful.MIME_JSON).
		Writes(SelectResponse{}).
		Returns(http.StatusOK, "OK", SelectResponse{}).
		Returns(http.StatusBadRequest, "Bad Request", ErrorResponse{}))

	ws.Route(ws.POST("/ui/notifications/{id}/dismiss").
		To(s.dismiss).
		Doc("Dismiss a notification").
		Param(ws.PathParameter("id", "Notification id").DataType("string")))

	ws.Route(ws.GET("/healthz").
		To(s.health).
		Doc("Health check").
		Produces(restful.MIME_JSON).
		Writes(HealthResponse{}).
		Returns(http.StatusOK, "OK", HealthResponse{}))

	s.container.Add(ws)
}

// Handler returns the routes wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(s.container)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("address", s.cfg.Addr).Msg("starting BioSearch UI")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down BioSearch UI")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequest(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()
	chain.ProcessFilter(req, resp)
	s.log.Debug().
		Str("method", req.Request.Method).
		Str("path", req.Request.URL.Path).
		Int("status", resp.StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("request")
}

// GET /
func (s *Server) index(req *restful.Request, resp *restful.Response) {
	query := s.session.State().Query
	if example := req.QueryParameter("example"); example != "" {
		query = session.ExampleQuery(example)
	}
	s.renderPage(resp, http.StatusOK, query, nil)
}

// POST /ui/search
// Body: query, databases (repeated), organism, date_from, date_to,
// result_type, limit
func (s *Server) search(req *restful.Request, resp *restful.Response) {
	if err := req.Request.ParseForm(); err != nil {
		s.writeError(resp, http.StatusBadRequest, fmt.Errorf("parsing form: %w", err))
		return
	}
	form := req.Request.PostForm
	sr := types.NewSearchRequest(form.Get("query"), form["databases"])
	sr.Filters = types.Filters{
		Organism:   strings.TrimSpace(form.Get("organism")),
		DateFrom:   strings.TrimSpace(form.Get("date_from")),
		DateTo:     strings.TrimSpace(form.Get("date_to")),
		ResultType: strings.TrimSpace(form.Get("result_type")),
	}
	if v := strings.TrimSpace(form.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			s.writeError(resp, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		sr.Filters.Limit = limit
	}

	outcome := s.session.SubmitRequest(req.Request.Context(), sr)
	s.log.Info().Str("query", sr.Query).Stringer("outcome", outcome).Msg("search handled")

	selected := map[string]bool{}
	for _, db := range sr.Databases {
		selected[db] = true
	}
	s.renderPage(resp, http.StatusOK, form.Get("query"), selected)
}

// GET /ui/export
func (s *Server) export(req *restful.Request, resp *restful.Response) {
	var buf bytes.Buffer
	name, err := s.session.ExportTo(&buf)
	if errors.Is(err, export.ErrNoResults) {
		http.Redirect(resp, req.Request, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.writeError(resp, http.StatusInternalServerError, err)
		return
	}
	resp.AddHeader("Content-Type", export.ContentType+"; charset=utf-8")
	resp.AddHeader("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	resp.WriteHeader(http.StatusOK)
	if _, err := resp.Write(buf.Bytes()); err != nil {
		s.log.Error().Err(err).Msg("writing export")
	}
}

// POST /ui/select
// Body: tab, index, target
func (s *Server) selectItem(req *restful.Request, resp *restful.Response) {
	index, err := strconv.Atoi(req.Request.FormValue("index"))
	if err != nil {
		s.writeError(resp, http.StatusBadRequest, fmt.Errorf("invalid index: %w", err))
		return
	}
	target, err := render.ParseTarget(req.Request.FormValue("target"))
	if err != nil {
		s.writeError(resp, http.StatusBadRequest, err)
		return
	}
	changed := s.session.Click(req.Request.FormValue("tab"), index, target)
	resp.WriteHeaderAndEntity(http.StatusOK, SelectResponse{
		Changed:  changed,
		Selected: s.session.Selected(),
	})
}

// POST /ui/notifications/{id}/dismiss
func (s *Server) dismiss(req *restful.Request, resp *restful.Response) {
	id := req.PathParameter("id")
	if !s.session.Notifications().Dismiss(id) {
		s.writeError(resp, http.StatusNotFound, fmt.Errorf("notification %s not found", id))
		return
	}
	if strings.Contains(req.Request.Header.Get("Accept"), "text/html") {
		http.Redirect(resp, req.Request, "/", http.StatusSeeOther)
		return
	}
	resp.WriteHeader(http.StatusNoContent)
}

// GET /healthz
func (s *Server) health(_ *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{Status: "ok"})
}

// renderPage writes the full page. selected overrides the configured
// checkbox defaults when non-nil.
func (s *Server) renderPage(resp *restful.Response, status int, query string, selected map[string]bool) {
	data := pageData{
		Query:     query,
		Databases: make([]types.DatabaseOption, len(s.cfg.Databases)),
		Examples:  s.cfg.Examples,
		State:     s.session.State(),
		Toasts:    s.session.Notifications().Active(),
	}
	for i, db := range s.cfg.Databases {
		if selected != nil {
			db.Checked = selected[db.Value]
		}
		data.Databases[i] = db
	}

	var buf bytes.Buffer
	if err := s.page.ExecuteTemplate(&buf, "page", data); err != nil {
		s.writeError(resp, http.StatusInternalServerError, fmt.Errorf("rendering page: %w", err))
		return
	}
	resp.AddHeader("Content-Type", "text/html; charset=utf-8")
	resp.WriteHeader(status)
	if _, err := resp.Write(buf.Bytes()); err != nil {
		s.log.Error().Err(err).Msg("writing page")
	}
}

func (s *Server) writeError(resp *restful.Response, status int, err error) {
	s.log.Error().Err(err).Int("status", status).Msg("request failed")
	if werr := resp.WriteHeaderAndJson(status, ErrorResponse{Error: err.Error()}, restful.MIME_JSON); werr != nil {
		s.log.Error().Err(werr).Msg("writing error response")
	}
}
