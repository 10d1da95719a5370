// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"html/template"

	"github.com/pdiddy/biosearch/internal/notify"
	"github.com/pdiddy/biosearch/internal/render"
	"github.com/pdiddy/biosearch/internal/session"
	"github.com/pdiddy/biosearch/pkg/types"
)

// pageData is everything the page template reads.
type pageData struct {
	Query     string
	Databases []types.DatabaseOption
	Examples  []string
	State     session.State
	Toasts    []notify.Notification
}

const pageTemplate = `{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>BioSearch</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
  <link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.1/css/all.min.css">
</head>
<body>
<div class="container py-4">
  <h1 class="h3 mb-4"><i class="fas fa-dna me-2"></i>BioSearch</h1>

  <form id="search-form" method="post" action="/ui/search" class="mb-4">
    <div class="input-group mb-2">
      <input type="text" class="form-control" id="search-query" name="query" value="{{.Query}}" placeholder="Search genes, proteins, drugs, publications...">
      <button class="btn btn-primary" type="submit"><i class="fas fa-search me-1"></i>Search</button>
    </div>
    <div class="form-text mb-3">Examples:{{range .Examples}}
      <a class="badge bg-secondary text-decoration-none" href="/?example={{.}}">{{.}}</a>{{end}}
    </div>
    <div class="d-flex flex-wrap gap-3">{{range .Databases}}
      <div class="form-check">
        <input class="form-check-input database-checkbox" type="checkbox" name="databases" value="{{.Value}}" id="db-{{.Value}}"{{if .Checked}} checked{{end}}>
        <label class="form-check-label" for="db-{{.Value}}">{{.Label}}</label>
      </div>{{end}}
    </div>
  </form>

  <section id="results-section"{{if not .State.Visible}} class="d-none"{{end}}>
    <div class="d-flex justify-content-between align-items-center mb-3">
      <h2 class="h5 mb-0">Results</h2>
      <a id="export-btn" class="btn btn-outline-secondary btn-sm" href="/ui/export"><i class="fas fa-file-export me-1"></i>Export JSON</a>
    </div>
    <div class="loader{{if not .State.Loading}} d-none{{end}}"><div class="spinner-border" role="status"></div></div>
    <ul class="nav nav-tabs" id="database-tabs" role="tablist">{{template "tabs" .State.View}}</ul>
    <div class="tab-content pt-3" id="database-content">{{template "panes" .State.View}}{{template "panel" .State.View.Panel}}</div>
  </section>
</div>

<div class="toast-container position-fixed bottom-0 end-0 p-3">{{range .Toasts}}
  <div id="{{.ID}}" class="toast show bg-{{.Kind}} {{.Kind.TextClass}}" role="alert" aria-live="assertive" aria-atomic="true">
    <div class="toast-header bg-{{.Kind}} {{.Kind.TextClass}}">
      <strong class="me-auto"><i class="fas {{.Kind.Icon}}"></i> BioSearch</strong>
      <form method="post" action="/ui/notifications/{{.ID}}/dismiss">
        <button type="submit" class="btn-close btn-close-white" aria-label="Close"></button>
      </form>
    </div>
    <div class="toast-body">{{.Message}}</div>
  </div>{{end}}
</div>

<script src="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/js/bootstrap.bundle.min.js"></script>
<script>
document.querySelectorAll('[data-bs-toggle="tooltip"]').forEach(function (el) { new bootstrap.Tooltip(el); });
document.querySelectorAll('.result-item').forEach(function (item) {
  item.addEventListener('click', function (e) {
    var target = 'body';
    if (e.target.tagName === 'A') { target = 'link'; }
    else if (e.target.closest('a')) { target = 'link-child'; }
    else if (e.target.tagName === 'INPUT' || e.target.closest('.form-check-input')) { target = 'checkbox'; }
    if (target === 'link' || target === 'link-child') { return; }
    // The browser forwards a label click to its checkbox as a second click.
    if (target === 'body' && e.target.closest('label')) { return; }
    var box = item.querySelector('.form-check-input');
    // A checkbox toggles itself; the server records it as a body click.
    var body = new URLSearchParams({tab: item.dataset.tab, index: item.dataset.index, target: 'body'});
    fetch('/ui/select', {method: 'POST', body: body}).then(function (r) { return r.json(); }).then(function (res) {
      if (res.changed && box && target === 'body') { box.checked = !box.checked; }
    });
  });
});
</script>
</body>
</html>{{end}}`

func parsePage() (*template.Template, error) {
	t, err := render.Templates.Clone()
	if err != nil {
		return nil, err
	}
	return t.Parse(pageTemplate)
}
