// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"html/template"
	"io"
)

const tabsTemplate = `{{define "tabs"}}{{range .Tabs}}
<li class="nav-item" role="presentation">
  <button class="nav-link{{if .Active}} active{{end}}" id="{{.ButtonID}}" data-bs-toggle="tab"
          data-bs-target="#{{.PaneID}}" type="button" role="tab"
          aria-controls="{{.PaneID}}" aria-selected="{{.Active}}">
    <span class="badge badge-{{.ID}} me-1"><i class="fas {{.Icon}}"></i></span>
    {{.Database}} <span class="badge bg-light text-dark">{{.Count}}</span>
  </button>
</li>{{end}}{{end}}`

const panesTemplate = `{{define "panes"}}{{range $tab := .Tabs}}
<div class="tab-pane fade{{if .Active}} show active{{end}}" id="{{.PaneID}}" role="tabpanel" aria-labelledby="{{.ButtonID}}">
{{range .Items}}{{template "item" (itemCtx $tab .)}}{{end}}
</div>{{end}}{{end}}

{{define "item"}}{{$tab := .Tab}}{{with .Item}}
<div class="result-item"{{if .RecordID}} data-id="{{.RecordID}}"{{end}} data-tab="{{$tab.ID}}" data-index="{{.Index}}" style="animation-delay: {{.AnimationDelay}};">
  <div class="d-flex justify-content-between align-items-start">
    {{if .Selectable}}<div class="form-check">
      <input class="form-check-input result-checkbox" type="checkbox" value="{{.RecordID}}" id="{{.CheckboxID}}"{{if .Checked}} checked{{end}}>
      <label class="form-check-label" for="{{.CheckboxID}}">
        <h3 class="result-title h5">{{.Label}}</h3>
      </label>
    </div>{{else}}<div>
      <h3 class="result-title h5">{{.Label}}</h3>
    </div>{{end}}
    {{if .Icon}}<span class="badge badge-{{$tab.ID}}"><i class="fas {{.Icon}}"></i></span>{{else}}<span class="badge badge-secondary">{{.Badge}}</span>{{end}}
  </div>
  <div class="result-meta">{{range .Meta}}
    <span class="result-meta-item"{{if .Tooltip}} data-bs-toggle="tooltip" title="{{.Tooltip}}"{{end}}>
      <i class="fas {{.Icon}}"></i> {{.Value}}
    </span>{{end}}
  </div>
  {{if .Description}}<p>{{.Description}}</p>{{end}}
  <a href="{{.URL}}" target="_blank" rel="noopener" class="result-link">
    {{.LinkText}} <i class="fas fa-external-link-alt"></i>
  </a>
</div>{{end}}{{end}}`

const panelTemplate = `{{define "panel"}}{{with .}}
<div class="alert alert-{{.Level}}">
  <i class="fas {{if eq .Level "danger"}}fa-exclamation-triangle{{else}}fa-info-circle{{end}} me-2"></i>{{.Message}}
</div>{{end}}{{end}}`

type itemContext struct {
	Tab  Tab
	Item Item
}

// Templates holds the named templates "tabs", "panes", "item", and
// "panel". Other packages may add templates to a Clone of it.
var Templates = template.Must(template.New("render").
	Funcs(template.FuncMap{
		"itemCtx": func(t Tab, it Item) itemContext { return itemContext{Tab: t, Item: it} },
	}).
	Parse(tabsTemplate + panesTemplate + panelTemplate))

// WriteTabs writes the tab list markup for v.
func WriteTabs(w io.Writer, v View) error {
	return Templates.ExecuteTemplate(w, "tabs", v)
}

// WritePanes writes the tab content markup for v.
func WritePanes(w io.Writer, v View) error {
	return Templates.ExecuteTemplate(w, "panes", v)
}

// WritePanel writes p, or nothing when p is nil.
func WritePanel(w io.Writer, p *Panel) error {
	if p == nil {
		return nil
	}
	return Templates.ExecuteTemplate(w, "panel", p)
}
