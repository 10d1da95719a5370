// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials for the search endpoint.
//
// Secrets come from two places: a directory of plain-text files, where the
// filename is the key name and the trimmed contents are the value, and
// dotenv files, which are loaded into the process environment so viper's
// BIOSEARCH_ variables can be kept out of the shell.
//
// Supported key files: biosearch-api-token.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// APITokenKey is the secret holding the bearer token for the search endpoint.
const APITokenKey = "biosearch-api-token"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, log zerolog.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnv loads each existing dotenv file into the process environment and
// returns the files it loaded. Variables already set are not overridden and
// missing files are skipped.
func LoadEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("loading %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
