// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes the last result set as a pretty-printed JSON file.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/biosearch/pkg/types"
)

// ErrNoResults is returned when there is nothing to export.
var ErrNoResults = errors.New("no results to export")

// Notification messages for the two export outcomes.
const (
	NoResultsMessage = "No results to export"
	SuccessMessage   = "Results exported successfully"
)

// ContentType is the media type of an export.
const ContentType = "application/json"

// FileName returns the export file name for the UTC date of now.
func FileName(now time.Time) string {
	return "biosearch_results_" + now.UTC().Format("2006-01-02") + ".json"
}

// Marshal encodes rs as 2-space indented JSON in response order, without
// HTML escaping, terminated by a newline. An empty set is ErrNoResults.
func Marshal(rs types.ResultSet) ([]byte, error) {
	if rs.IsEmpty() {
		return nil, ErrNoResults
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rs); err != nil {
		return nil, fmt.Errorf("encoding results: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode writes the export of rs to w. Nothing is written on error.
func Encode(w io.Writer, rs types.ResultSet) error {
	data, err := Marshal(rs)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile writes the export of rs into dir and returns the file path. The
// file appears complete or not at all.
func WriteFile(dir string, rs types.ResultSet, now time.Time) (string, error) {
	data, err := Marshal(rs)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".biosearch-export-*")
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing export file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing export file: %w", err)
	}

	path := filepath.Join(dir, FileName(now))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("writing export file: %w", err)
	}
	return path, nil
}
