// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"go.yaml.in/yaml/v3"
)

// Kind identifies how a database's records are laid out.
type Kind string

const (
	KindNCBI     Kind = "ncbi"
	KindPubMed   Kind = "pubmed"
	KindUniProt  Kind = "uniprot"
	KindDrugBank Kind = "drugbank"
	KindPDB      Kind = "pdb"
	KindGeneric  Kind = "generic"
	KindCustom   Kind = "custom"
)

// DescriptionMode controls the description paragraph under an item.
type DescriptionMode string

const (
	// DescriptionPlaceholder always shows a paragraph, with a placeholder
	// when the record has no description.
	DescriptionPlaceholder DescriptionMode = "placeholder"
	// DescriptionOptional shows the paragraph only when present.
	DescriptionOptional DescriptionMode = "optional"
	// DescriptionNone never shows the paragraph.
	DescriptionNone DescriptionMode = "none"
)

const (
	unknownLabel       = "Unknown"
	missingValue       = "N/A"
	missingDescription = "No description available."
	defaultTabIcon     = "fa-database"
)

// MetaSpec describes one meta field shown under the item label.
type MetaSpec struct {
	Field   string `yaml:"field"`
	Icon    string `yaml:"icon"`
	Tooltip string `yaml:"tooltip,omitempty"`
	// Prefix is prepended to the value (e.g. "ID: ").
	Prefix string `yaml:"prefix,omitempty"`
	// OmitEmpty hides the field instead of showing a placeholder.
	OmitEmpty bool `yaml:"omit_empty,omitempty"`
}

// Layout maps one database's records to items.
type Layout struct {
	Kind Kind `yaml:"kind,omitempty"`

	// LabelFields are tried in order for the item title.
	LabelFields []string `yaml:"label"`

	// Icon is the badge icon for tabs and items. An empty icon shows the
	// database name as the item badge instead.
	Icon string `yaml:"icon,omitempty"`

	// TabIcon overrides Icon on the tab only.
	TabIcon string `yaml:"tab_icon,omitempty"`

	Meta        []MetaSpec      `yaml:"meta"`
	Description DescriptionMode `yaml:"description"`

	// Selectable items carry a checkbox keyed by the record id.
	Selectable bool `yaml:"selectable"`
}

var builtinLayouts = map[string]Layout{
	"NCBI": {
		Kind:        KindNCBI,
		LabelFields: []string{"name"},
		Icon:        "fa-dna",
		Meta: []MetaSpec{
			{Field: "id", Icon: "fa-fingerprint", Tooltip: "NCBI Gene ID"},
			{Field: "organism", Icon: "fa-leaf", Tooltip: "Organism"},
		},
		Description: DescriptionPlaceholder,
		Selectable:  true,
	},
	"PubMed": {
		Kind:        KindPubMed,
		LabelFields: []string{"title"},
		Icon:        "fa-book-medical",
		Meta: []MetaSpec{
			{Field: "id", Icon: "fa-hashtag", Tooltip: "PubMed ID"},
			{Field: "authors", Icon: "fa-users", Tooltip: "Authors"},
			{Field: "journal", Icon: "fa-book", Tooltip: "Journal"},
			{Field: "pubdate", Icon: "fa-calendar-alt", Tooltip: "Publication Date"},
		},
		Description: DescriptionNone,
		Selectable:  true,
	},
	"UniProt": {
		Kind:        KindUniProt,
		LabelFields: []string{"name"},
		Icon:        "fa-atom",
		Meta: []MetaSpec{
			{Field: "id", Icon: "fa-id-card", Tooltip: "UniProt Accession"},
			{Field: "gene", Icon: "fa-dna", Tooltip: "Gene"},
			{Field: "organism", Icon: "fa-leaf", Tooltip: "Organism"},
		},
		Description: DescriptionPlaceholder,
		Selectable:  true,
	},
	"DrugBank": {
		Kind:        KindDrugBank,
		LabelFields: []string{"name"},
		Icon:        "fa-prescription-bottle-alt",
		Meta: []MetaSpec{
			{Field: "id", Icon: "fa-id-card", Tooltip: "DrugBank ID"},
			{Field: "type", Icon: "fa-tag", Tooltip: "Type"},
		},
		Description: DescriptionPlaceholder,
		Selectable:  true,
	},
	"PDB": {
		Kind:        KindPDB,
		LabelFields: []string{"name"},
		Icon:        "fa-cube",
		Meta: []MetaSpec{
			{Field: "id", Icon: "fa-cube", Tooltip: "PDB ID"},
			{Field: "description", Icon: "fa-info-circle", Tooltip: "Description", OmitEmpty: true},
		},
		Description: DescriptionNone,
	},
	"KEGG": genericLayout("fa-project-diagram"),
}

func genericLayout(tabIcon string) Layout {
	return Layout{
		Kind:        KindGeneric,
		LabelFields: []string{"name", "title"},
		TabIcon:     tabIcon,
		Meta: []MetaSpec{
			{Field: "id", Icon: "fa-fingerprint", Prefix: "ID: "},
		},
		Description: DescriptionOptional,
	}
}

// Registry maps database names to layouts. Names match exactly; unknown
// names get the generic layout.
type Registry struct {
	mu      sync.RWMutex
	layouts map[string]Layout
}

// NewRegistry returns a registry holding the built-in layouts.
func NewRegistry() *Registry {
	r := &Registry{layouts: make(map[string]Layout, len(builtinLayouts))}
	for name, l := range builtinLayouts {
		r.layouts[name] = l
	}
	return r
}

// Register adds or replaces the layout for name.
func (r *Registry) Register(name string, l Layout) {
	if l.Kind == "" {
		l.Kind = KindCustom
	}
	if l.Description == "" {
		l.Description = DescriptionOptional
	}
	if len(l.LabelFields) == 0 {
		l.LabelFields = []string{"name", "title"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layouts[name] = l
}

// Lookup returns the layout for name, or the generic layout.
func (r *Registry) Lookup(name string) Layout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.layouts[name]; ok {
		return l
	}
	return genericLayout("")
}

// Names returns the registered database names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFile registers every layout in a YAML file mapping database names to
// layouts, e.g.
//
//	Ensembl:
//	  label: [name]
//	  icon: fa-dna
//	  meta:
//	    - {field: id, icon: fa-fingerprint, tooltip: Ensembl ID}
//	  description: optional
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading layouts file: %w", err)
	}
	var layouts map[string]Layout
	if err := yaml.Unmarshal(data, &layouts); err != nil {
		return fmt.Errorf("parsing layouts file %s: %w", path, err)
	}
	for name, l := range layouts {
		switch l.Description {
		case "", DescriptionPlaceholder, DescriptionOptional, DescriptionNone:
		default:
			return fmt.Errorf("layout %s: unknown description mode %q", name, l.Description)
		}
		r.Register(name, l)
	}
	return nil
}
