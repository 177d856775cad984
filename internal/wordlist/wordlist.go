// Package wordlist loads the vocabulary word list from files.
package wordlist

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/wordmonster/internal/model"
)

// Load reads word pairs from path. Files ending in .json are decoded as a JSON
// array of {"en","zh"} objects; anything else is read as tab-separated lines.
func Load(path string) ([]model.WordPair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	var pairs []model.WordPair
	if strings.EqualFold(filepath.Ext(path), ".json") {
		pairs, err = DecodeJSON(file)
	} else {
		pairs, err = DecodeTSV(file)
	}
	if err != nil {
		return nil, err
	}
	return Filter(pairs, KeepComplete), nil
}

// LoadOrEmpty loads the word list, degrading to an empty list on any failure.
func LoadOrEmpty(path string, logger zerolog.Logger) []model.WordPair {
	pairs, err := Load(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("word list unavailable; continuing with an empty list")
		return []model.WordPair{}
	}
	return pairs
}

// DecodeTSV reads one "en<TAB>zh" pair per line. Blank lines and lines
// starting with '#' are skipped.
func DecodeTSV(r io.Reader) ([]model.WordPair, error) {
	var pairs []model.WordPair
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		en, zh, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"en<TAB>zh\"", lineNo)
		}
		pairs = append(pairs, model.WordPair{EN: strings.TrimSpace(en), ZH: strings.TrimSpace(zh)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// DecodeJSON reads a JSON array of word pairs, validating it against the
// embedded schema first.
func DecodeJSON(r io.Reader) ([]model.WordPair, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := validateJSON(raw); err != nil {
		return nil, err
	}
	var pairs []model.WordPair
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, fmt.Errorf("failed to decode word list: %w", err)
	}
	return pairs, nil
}

// Write stores pairs as a JSON word list, replacing path atomically.
func Write(path string, pairs []model.WordPair) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create word list dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "words-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp word list: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	enc := json.NewEncoder(writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if pairs == nil {
		pairs = []model.WordPair{}
	}
	if err := enc.Encode(pairs); err != nil {
		return fmt.Errorf("failed to write word list: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush word list: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close word list: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write word list: %w", err)
	}
	return nil
}
