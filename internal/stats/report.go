package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/wordmonster/internal/model"
)

// HistorySource lists finished runs.
type HistorySource interface {
	ListRuns(ctx context.Context, cfg model.HistoryConfig) ([]model.RunRecord, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Runs     []model.RunRecord
	Scores   []float64
	Mastered []float64
}

// BuildReport loads runs and smooths their curves over window runs.
func BuildReport(ctx context.Context, src HistorySource, cfg model.HistoryConfig, window int) (Report, error) {
	runs, err := src.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	scores := make([]float64, len(runs))
	mastered := make([]float64, len(runs))
	for i, r := range runs {
		scores[i] = float64(r.Score)
		mastered[i] = float64(r.MasteredAfter)
	}
	return Report{
		Runs:     runs,
		Scores:   MovingAverage(scores, window),
		Mastered: MovingAverage(mastered, window),
	}, nil
}

// RenderReport prints a run summary, the curves and a table of runs.
func RenderReport(w io.Writer, r Report) error {
	if len(r.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	best, total, cleared := 0, 0, 0
	for _, run := range r.Runs {
		best = max(best, run.Score)
		total += run.Score
		if !run.GameOver {
			cleared++
		}
	}
	summary := [][]string{
		{"Runs", fmt.Sprintf("%d", len(r.Runs))},
		{"Cleared", fmt.Sprintf("%d", cleared)},
		{"Avg score", fmt.Sprintf("%.2f", float64(total)/float64(len(r.Runs)))},
		{"Best score", fmt.Sprintf("%d", best)},
		{"Score", Sparkline(r.Scores)},
		{"Mastered", Sparkline(r.Mastered)},
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if err := writeLines(w, formatTable(nil, summary, nil)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	rows := make([][]string, 0, len(r.Runs))
	for _, run := range r.Runs {
		result := "cleared"
		if run.GameOver {
			result = "game over"
		}
		rows = append(rows, []string{
			run.EndedAt.Local().Format("2006-01-02 15:04"),
			run.Mode.String(),
			fmt.Sprintf("%d/%d", run.Score, run.PoolSize),
			fmt.Sprintf("%d", run.HeartsLeft),
			fmt.Sprintf("%d", run.MasteredAfter),
			result,
		})
	}
	headers := []string{"Ended", "Mode", "Score", "Hearts", "Mastered", "Result"}
	return writeLines(w, formatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true}))
}
