package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Word", "Count", "Mode"}
	rows := [][]string{
		{"a", "12", "normal"},
		{"<space>", "3", "wrong"},
	}
	rightAlign := map[int]bool{1: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Word     Count  Mode" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "a           12  normal" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "<space>      3  wrong" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableUsesDisplayWidth(t *testing.T) {
	headers := []string{"Chinese", "English"}
	rows := [][]string{
		{"猫", "cat"},
		{"长颈鹿", "giraffe"},
	}

	lines := formatTable(headers, rows, nil)
	want := []string{
		"Chinese  English",
		"猫       cat",
		"长颈鹿   giraffe",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, lines[i], want[i])
		}
	}
}
