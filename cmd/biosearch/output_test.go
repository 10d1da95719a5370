// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/biosearch/internal/notify"
	"github.com/pdiddy/biosearch/internal/render"
	"github.com/pdiddy/biosearch/pkg/types"
)

func TestWriteTableGroupsByDatabase(t *testing.T) {
	var rs types.ResultSet
	rs.Set("NCBI", types.Found(types.NewRecord(
		"id", "672", "name", "BRCA1", "organism", "Homo sapiens",
		"url", "https://www.ncbi.nlm.nih.gov/gene/672")))
	rs.Set("UniProt", types.Failure("timeout"))
	rs.Set("PubMed", types.Found(
		types.NewRecord("id", "1", "title", "BRCA1 and cancer"),
		types.NewRecord("id", "2", "title", "DNA repair"),
	))

	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, render.Render(rs)))
	out := buf.String()

	assert.Contains(t, out, "NCBI (1)")
	assert.Contains(t, out, "PubMed (2)")
	assert.Contains(t, out, "BRCA1")
	assert.Contains(t, out, "Homo sapiens")
	assert.Contains(t, out, "https://www.ncbi.nlm.nih.gov/gene/672")
	assert.Contains(t, out, "2. ")
	assert.Contains(t, out, "skipped: UniProt")
	assert.Less(t, strings.Index(out, "NCBI (1)"), strings.Index(out, "PubMed (2)"), "tabs keep response order")
}

func TestWriteTableNoResults(t *testing.T) {
	var rs types.ResultSet
	rs.Set("NCBI", types.Found())

	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, render.Render(rs)))
	assert.Contains(t, buf.String(), render.NoResultsMessage)
}

func TestNotificationLine(t *testing.T) {
	line := notificationLine(notify.Notification{Kind: notify.Warning, Message: "Please enter a search query"})
	assert.Contains(t, line, "[warning] Please enter a search query")
}

func TestWriteLayoutsListsBuiltins(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLayouts(&buf, render.NewRegistry()))
	out := buf.String()
	assert.Contains(t, out, "NCBI")
	assert.Contains(t, out, string(render.KindPubMed))
}

func TestDefaultDatabaseValues(t *testing.T) {
	assert.Equal(t, []string{"ncbi", "pubmed", "uniprot"}, defaultDatabaseValues())
}
