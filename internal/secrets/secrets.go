// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Supported key files: gemini-api-key, openai-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// envFallbacks maps key files to their environment variable fallbacks.
// A secret file takes precedence over its environment variable.
var envFallbacks = map[string]string{
	"gemini-api-key": "GEMINI_API_KEY",
	"openai-api-key": "OPENAI_API_KEY",
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents. Keys absent from dir are filled from their environment variable
// fallback when one is set. A missing directory is not an error; unreadable
// files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	secrets := make(map[string]string)

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[entry.Name()] = value
		}
	}

	for key, envVar := range envFallbacks {
		if _, ok := secrets[key]; ok {
			continue
		}
		if value := strings.TrimSpace(os.Getenv(envVar)); value != "" {
			secrets[key] = value
		}
	}

	return secrets, nil
}
