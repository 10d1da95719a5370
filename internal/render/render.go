// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns a ResultSet into a view model of tabs, panes, and
// items, and binds that view model to HTML.
//
// Rendering is a pure function of the ResultSet and the layout registry:
// the same input always yields the same View. Databases that returned an
// error or no records get no tab.
package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/biosearch/pkg/types"
)

// Panel messages shown instead of tabs.
const (
	NoResultsMessage   = "No results found. Try a different search term or select different databases."
	SearchErrorMessage = "An error occurred while searching. Please try again."
)

// PanelLevel selects the alert styling of a Panel.
type PanelLevel string

const (
	PanelInfo   PanelLevel = "info"
	PanelDanger PanelLevel = "danger"
)

// Panel is a single message shown in place of the tab set.
type Panel struct {
	Level   PanelLevel `json:"level"`
	Message string     `json:"message"`
}

// InfoPanel returns the "no results" panel.
func InfoPanel() *Panel {
	return &Panel{Level: PanelInfo, Message: NoResultsMessage}
}

// ErrorPanel returns the generic search failure panel.
func ErrorPanel() *Panel {
	return &Panel{Level: PanelDanger, Message: SearchErrorMessage}
}

// Meta is one labelled value under an item title.
type Meta struct {
	Icon    string `json:"icon"`
	Tooltip string `json:"tooltip,omitempty"`
	Value   string `json:"value"`
}

// Item is one rendered record.
type Item struct {
	RecordID    string `json:"record_id,omitempty"`
	Label       string `json:"label"`
	Icon        string `json:"icon,omitempty"`
	Badge       string `json:"badge,omitempty"`
	Meta        []Meta `json:"meta"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	LinkText    string `json:"link_text"`
	Selectable  bool   `json:"selectable"`
	Checked     bool   `json:"checked"`
	Index       int    `json:"index"`
}

// AnimationDelay staggers item entry animations by position.
func (i Item) AnimationDelay() string {
	return fmt.Sprintf("%.2fs", float64(i.Index)*0.05)
}

// CheckboxID is the element id of the item's checkbox.
func (i Item) CheckboxID() string { return "result-" + i.RecordID }

// Tab is one database's tab and pane.
type Tab struct {
	ID       string `json:"id"`
	Database string `json:"database"`
	Kind     Kind   `json:"kind"`
	Icon     string `json:"icon"`
	Active   bool   `json:"active"`
	Items    []Item `json:"items"`
}

// Count returns the number of records in the tab.
func (t Tab) Count() int { return len(t.Items) }

// ButtonID is the element id of the tab button.
func (t Tab) ButtonID() string { return t.ID + "-tab" }

// PaneID is the element id of the tab pane.
func (t Tab) PaneID() string { return t.ID + "-content" }

// View is the rendered form of a ResultSet. Exactly one of Tabs and Panel
// is non-empty for a rendered result; a zero View is the cleared state.
type View struct {
	Tabs  []Tab  `json:"tabs"`
	Panel *Panel `json:"panel,omitempty"`

	// Skipped lists databases omitted because they failed or were empty.
	Skipped []string `json:"skipped,omitempty"`
}

// Contributing returns how many databases produced a tab.
func (v View) Contributing() int { return len(v.Tabs) }

// Empty reports whether the view holds neither tabs nor a panel.
func (v View) Empty() bool { return len(v.Tabs) == 0 && v.Panel == nil }

// Active returns the active tab, if any.
func (v View) Active() (Tab, bool) {
	for _, t := range v.Tabs {
		if t.Active {
			return t, true
		}
	}
	return Tab{}, false
}

// Tooltips counts the elements carrying tooltip metadata; the UI layer must
// initialize tooltips for each after inserting the markup.
func (v View) Tooltips() int {
	n := 0
	for _, t := range v.Tabs {
		for _, it := range t.Items {
			for _, m := range it.Meta {
				if m.Tooltip != "" {
					n++
				}
			}
		}
	}
	return n
}

// Clone returns a deep copy so selection changes do not leak between views.
func (v View) Clone() View {
	c := View{Skipped: append([]string(nil), v.Skipped...)}
	if v.Panel != nil {
		p := *v.Panel
		c.Panel = &p
	}
	if v.Tabs != nil {
		c.Tabs = make([]Tab, len(v.Tabs))
		for i, t := range v.Tabs {
			t.Items = append([]Item(nil), t.Items...)
			c.Tabs[i] = t
		}
	}
	return c
}

// Target is the element a click landed on inside an item.
type Target int

const (
	// TargetBody is anywhere in the item that is not a link or the checkbox.
	TargetBody Target = iota
	// TargetLink is the outbound link itself.
	TargetLink
	// TargetLinkChild is an element nested inside the link.
	TargetLinkChild
	// TargetCheckbox is the checkbox, which toggles itself.
	TargetCheckbox
)

// ParseTarget maps a target name ("body", "link", "link-child",
// "checkbox") to a Target.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "", "body":
		return TargetBody, nil
	case "link", "a":
		return TargetLink, nil
	case "link-child":
		return TargetLinkChild, nil
	case "checkbox", "input":
		return TargetCheckbox, nil
	}
	return TargetBody, fmt.Errorf("unknown click target %q", s)
}

// Click handles a click on item index of tab tabID. Only a click on the
// item body toggles the checkbox of a selectable item; links and the
// checkbox handle their own clicks. It reports whether the state changed.
func (v *View) Click(tabID string, index int, target Target) bool {
	if target != TargetBody {
		return false
	}
	for ti := range v.Tabs {
		if v.Tabs[ti].ID != tabID {
			continue
		}
		if index < 0 || index >= len(v.Tabs[ti].Items) {
			return false
		}
		it := &v.Tabs[ti].Items[index]
		if !it.Selectable {
			return false
		}
		it.Checked = !it.Checked
		return true
	}
	return false
}

// Selection identifies one checked record.
type Selection struct {
	Database string `json:"database"`
	RecordID string `json:"record_id"`
}

// Selected lists the checked records in tab and item order.
func (v View) Selected() []Selection {
	var out []Selection
	for _, t := range v.Tabs {
		for _, it := range t.Items {
			if it.Checked {
				out = append(out, Selection{Database: t.Database, RecordID: it.RecordID})
			}
		}
	}
	return out
}

// TabID derives a tab identifier: the lowercased name with every run of
// whitespace replaced by a hyphen.
func TabID(name string) string {
	lower := cases.Lower(language.Und).String(name)
	var b strings.Builder
	inSpace := false
	for _, r := range lower {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Renderer renders result sets with a layout registry.
type Renderer struct {
	reg *Registry
	log zerolog.Logger
}

// New returns a Renderer. A nil registry uses the built-in layouts.
func New(reg *Registry, log zerolog.Logger) *Renderer {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Renderer{reg: reg, log: log}
}

// Render builds the view for rs with the built-in layouts.
func Render(rs types.ResultSet) View {
	return New(nil, zerolog.Nop()).Render(rs)
}

// Render builds the view for rs. The first contributing database in
// response order is the active tab. When no database contributes, the view
// holds only the informational panel.
func (r *Renderer) Render(rs types.ResultSet) View {
	var v View
	ids := make(map[string]int)
	for _, name := range rs.Names() {
		res, _ := rs.Get(name)
		if !res.Contributes() {
			if res.Failed() {
				r.log.Debug().Str("database", name).Str("error", res.Error).Msg("skipping failed database")
			}
			v.Skipped = append(v.Skipped, name)
			continue
		}

		layout := r.reg.Lookup(name)
		tab := Tab{
			ID:       uniqueTabID(ids, TabID(name)),
			Database: name,
			Kind:     layout.Kind,
			Icon:     layout.tabIcon(),
			Active:   len(v.Tabs) == 0,
			Items:    make([]Item, 0, len(res.Records)),
		}
		for i, rec := range res.Records {
			tab.Items = append(tab.Items, layout.item(name, rec, i))
		}
		v.Tabs = append(v.Tabs, tab)
	}

	if len(v.Tabs) == 0 {
		v.Panel = InfoPanel()
	}
	return v
}

// uniqueTabID suffixes id with -2, -3, ... when an earlier tab already took
// it, so names differing only in case or spacing keep distinct elements.
func uniqueTabID(seen map[string]int, id string) string {
	seen[id]++
	if seen[id] == 1 {
		return id
	}
	for {
		candidate := fmt.Sprintf("%s-%d", id, seen[id])
		if seen[candidate] == 0 {
			seen[candidate] = 1
			return candidate
		}
		seen[id]++
	}
}

func (l Layout) tabIcon() string {
	switch {
	case l.TabIcon != "":
		return l.TabIcon
	case l.Icon != "":
		return l.Icon
	default:
		return defaultTabIcon
	}
}

func (l Layout) item(database string, rec types.Record, index int) Item {
	it := Item{
		RecordID:   rec.Get("id"),
		Label:      unknownLabel,
		Icon:       l.Icon,
		URL:        rec.Get("url"),
		LinkText:   "View on " + database,
		Selectable: l.Selectable,
		Index:      index,
	}
	if l.Icon == "" {
		it.Badge = database
	}
	for _, field := range l.LabelFields {
		if v := rec.Get(field); v != "" {
			it.Label = v
			break
		}
	}
	for _, spec := range l.Meta {
		v := rec.Get(spec.Field)
		if v == "" {
			if spec.OmitEmpty {
				continue
			}
			v = missingValue
		}
		it.Meta = append(it.Meta, Meta{Icon: spec.Icon, Tooltip: spec.Tooltip, Value: spec.Prefix + v})
	}
	switch l.Description {
	case DescriptionPlaceholder:
		it.Description = rec.Get("description")
		if it.Description == "" {
			it.Description = missingDescription
		}
	case DescriptionOptional:
		it.Description = rec.Get("description")
	}
	return it
}
