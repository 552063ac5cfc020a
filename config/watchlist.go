package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type watchlistFile struct {
	Symbols []string `yaml:"symbols"`
}

// LoadWatchlist reads overview symbols from a YAML file of the form `symbols: [A, B]`.
// Symbols are trimmed, upper-cased and de-duplicated in order.
func LoadWatchlist(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}

	var wf watchlistFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse watchlist: %w", err)
	}

	seen := make(map[string]bool, len(wf.Symbols))
	symbols := make([]string, 0, len(wf.Symbols))
	for _, s := range wf.Symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("watchlist %s contains no symbols", path)
	}
	return symbols, nil
}
