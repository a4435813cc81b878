package textclean

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadStopwords reads one stop-word per line. A missing file degrades to an
// empty set; any other read failure is returned.
func LoadStopwords(path string, logger *slog.Logger) (Stopwords, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("stopwords file not found, continuing without stop-word removal", "path", path)
			return Stopwords{}, nil
		}
		return nil, fmt.Errorf("open stopwords: %w", err)
	}
	defer f.Close()

	words := make(Stopwords)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words[w] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan stopwords: %w", err)
	}

	logger.Info("stopwords loaded", "path", path, "count", len(words))
	return words, nil
}

// LoadSystemPatterns reads the list of platform-notice substrings. The file is a
// JSON array of strings; YAML sequences are accepted too. Patterns are
// lower-cased. A missing file yields an empty list.
func LoadSystemPatterns(path string, logger *slog.Logger) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("system message patterns file not found, no notices will be filtered", "path", path)
			return []string{}, nil
		}
		return nil, fmt.Errorf("read system patterns: %w", err)
	}

	var raw []string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode system patterns: %w", err)
	}

	patterns := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.ToLower(p); strings.TrimSpace(p) != "" {
			patterns = append(patterns, p)
		}
	}

	logger.Info("system message patterns loaded", "path", path, "count", len(patterns))
	return patterns, nil
}
