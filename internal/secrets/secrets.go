// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Recognized key files.
const (
	PubMedAPIKey    = "pubmed-api-key"
	PubMedEmail     = "pubmed-email"
	OpenAIAPIKey    = "openai-api-key"
	AnthropicAPIKey = "anthropic-api-key"
	UserAgent       = "clinicaltrials-user-agent"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
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
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply copies secrets into cfg where the matching setting is still
// empty. Values from the config file or environment take precedence.
// The model key is chosen by the configured provider.
func Apply(cfg *types.Config, s map[string]string) {
	setIfEmpty(&cfg.Sources.PubMed.APIKey, s[PubMedAPIKey])
	setIfEmpty(&cfg.Sources.PubMed.Email, s[PubMedEmail])
	setIfEmpty(&cfg.Sources.UserAgent, s[UserAgent])

	switch cfg.Agent.Provider {
	case types.ProviderAnthropic:
		setIfEmpty(&cfg.Agent.APIKey, s[AnthropicAPIKey])
	default:
		setIfEmpty(&cfg.Agent.APIKey, s[OpenAIAPIKey])
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}
