package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/wordmonster/internal/model"
)

// DefaultWrongLimit caps the wrong-answer list.
const DefaultWrongLimit = 80

// WrongEntry is a word with its cumulative wrong attempts.
type WrongEntry struct {
	Word  model.WordPair
	Count int
}

// WrongList returns words with at least one wrong attempt, most missed first.
// Ties are ordered by English word. A limit of zero or less returns all.
func WrongList(words []model.WordPair, wrong model.WrongCounts, limit int) []WrongEntry {
	seen := make(map[string]struct{}, len(words))
	entries := make([]WrongEntry, 0)
	for _, w := range words {
		key := w.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if n := wrong[key]; n >= 1 {
			entries = append(entries, WrongEntry{Word: w, Count: n})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count == entries[j].Count {
			return entries[i].Word.Key() < entries[j].Word.Key()
		}
		return entries[i].Count > entries[j].Count
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// RenderWrongList prints the wrong-answer list as a table. Lines are cut to
// width display cells when width is positive.
func RenderWrongList(w io.Writer, entries []WrongEntry, width int) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No wrong answers yet.")
		return err
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Word.EN, e.Word.ZH, fmt.Sprintf("%d", e.Count)})
	}
	lines := formatTable([]string{"English", "Chinese", "Wrong"}, rows, map[int]bool{2: true})
	if width > 0 {
		for i, line := range lines {
			lines[i] = runewidth.Truncate(line, width, "…")
		}
	}
	return writeLines(w, lines)
}
