// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/biosearch/pkg/types"
)

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, types.LogConfig{Level: "info", Format: "json"})
	log.Info().Str("database", "NCBI").Msg("rendered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "NCBI", entry["database"])
	assert.Equal(t, "rendered", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewLevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantOut bool
	}{
		{"debug passes at debug", "debug", true},
		{"debug dropped at info", "info", false},
		{"unknown level is info", "loud", false},
		{"empty level is info", "", false},
		{"uppercase accepted", "DEBUG", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(&buf, types.LogConfig{Level: tt.level, Format: "json"})
			log.Debug().Msg("detail")
			assert.Equal(t, tt.wantOut, buf.Len() > 0)
		})
	}
}

func TestNewNonTerminalDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, types.LogConfig{})
	log.Warn().Msg("plain")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "expected JSON line, got %q", buf.String())
}
