// Package stats contains progress counters and run history reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/wordmonster/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Counts summarizes progress over a word list.
type Counts struct {
	Total      int
	Mastered   int
	Unmastered int
	Wrong      int
}

// CountWords counts mastered, unmastered and wrong words in words.
func CountWords(words []model.WordPair, mastery model.MasterySet, wrong model.WrongCounts) Counts {
	c := Counts{Total: len(words)}
	for _, w := range words {
		key := w.Key()
		if mastery.Has(key) {
			c.Mastered++
		}
		if wrong[key] >= 1 {
			c.Wrong++
		}
	}
	c.Unmastered = c.Total - c.Mastered
	return c
}

// RenderCounts prints the home screen counters.
func RenderCounts(w io.Writer, c Counts) error {
	headers := []string{"Words", "Mastered", "Unmastered", "Wrong"}
	rows := [][]string{{
		fmt.Sprintf("%d", c.Total),
		fmt.Sprintf("%d", c.Mastered),
		fmt.Sprintf("%d", c.Unmastered),
		fmt.Sprintf("%d", c.Wrong),
	}}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 1: true, 2: true, 3: true}))
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
