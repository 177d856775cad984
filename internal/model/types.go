// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// WordPair is a single English/Chinese vocabulary entry.
type WordPair struct {
	EN string `json:"en"`
	ZH string `json:"zh"`
}

// Key returns the normalized identifier for the pair.
func (w WordPair) Key() string {
	return Key(w.EN)
}

// Key normalizes an English word for use as a progress identifier.
func Key(en string) string {
	return strings.ToLower(strings.TrimSpace(en))
}

// MasterySet holds the keys of words answered correctly at least once.
type MasterySet map[string]struct{}

// Has reports whether key is mastered.
func (s MasterySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// WrongCounts maps a word key to its cumulative wrong attempts.
type WrongCounts map[string]int

// Mode selects which words are eligible for a run.
type Mode int

const (
	ModeNormal Mode = iota
	ModeReview
	ModeWrong
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeNormal, ModeReview, ModeWrong}

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeReview:
		return "review"
	case ModeWrong:
		return "wrong"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses a mode name (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "":
		return ModeNormal, nil
	case "review":
		return ModeReview, nil
	case "wrong":
		return ModeWrong, nil
	default:
		return ModeNormal, fmt.Errorf("unknown mode %q (want normal, review or wrong)", s)
	}
}

// QuestionType is the way a word is asked.
type QuestionType int

const (
	QuestionEnToZh QuestionType = iota
	QuestionZhToEn
	QuestionSpell
)

// QuestionTypes lists every question type.
var QuestionTypes = []QuestionType{QuestionEnToZh, QuestionZhToEn, QuestionSpell}

func (q QuestionType) String() string {
	switch q {
	case QuestionEnToZh:
		return "en-to-zh"
	case QuestionZhToEn:
		return "zh-to-en"
	case QuestionSpell:
		return "spell"
	default:
		return fmt.Sprintf("question(%d)", int(q))
	}
}

// IsChoice reports whether the type is answered by picking an option.
func (q QuestionType) IsChoice() bool {
	return q == QuestionEnToZh || q == QuestionZhToEn
}

// RunRecord captures a finished run for history.
type RunRecord struct {
	RunID         string
	Mode          Mode
	StartedAt     time.Time
	EndedAt       time.Time
	PoolSize      int
	Score         int
	HeartsLeft    int
	GameOver      bool
	MasteredAfter int
}

// HistoryConfig filters run history queries.
type HistoryConfig struct {
	Mode  *Mode
	Since *time.Time
	Last  int
}
