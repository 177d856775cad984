package session

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/wordmonster/internal/model"
)

// Stage is the grading stage of the current run.
type Stage int

const (
	StageIdle     Stage = iota // No run in progress
	StageAwaiting              // Question shown, no wrong attempt yet
	StageHinted                // One wrong attempt, hint shown, one more try allowed
	StageCorrect               // Answered correctly; waiting for Advance
	StageWrong                 // Answer revealed after the second wrong attempt
	StageEnded                 // Run finished; summary available
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAwaiting:
		return "awaiting"
	case StageHinted:
		return "hinted"
	case StageCorrect:
		return "correct"
	case StageWrong:
		return "wrong"
	case StageEnded:
		return "ended"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Open reports whether the current question still accepts answers.
func (s Stage) Open() bool {
	return s == StageAwaiting || s == StageHinted
}

// Revealed reports whether the current question has been decided.
func (s Stage) Revealed() bool {
	return s == StageCorrect || s == StageWrong
}

// Outcome is the result of submitting an answer.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeCorrect
	OutcomeHint
	OutcomeWrong
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeCorrect:
		return "correct"
	case OutcomeHint:
		return "hint"
	case OutcomeWrong:
		return "wrong"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// HintKind tells how a hint should be presented.
type HintKind int

const (
	HintNone     HintKind = iota
	HintLetters           // first letter and length of the English word
	HintStrategy          // generic advice for English-to-Chinese choices
)

// Hint is shown after the first wrong attempt.
type Hint struct {
	Kind   HintKind
	First  string
	Length int
}

func hintFor(q Question) Hint {
	if q.Type == model.QuestionEnToZh {
		return Hint{Kind: HintStrategy}
	}
	en := strings.TrimSpace(q.Word.EN)
	first, _ := utf8.DecodeRuneInString(en)
	return Hint{
		Kind:   HintLetters,
		First:  string(first),
		Length: utf8.RuneCountInString(en),
	}
}

// Text renders the hint as a sentence.
func (h Hint) Text() string {
	switch h.Kind {
	case HintLetters:
		return fmt.Sprintf("Hint: starts with %q, %d letters", strings.ToUpper(h.First), h.Length)
	case HintStrategy:
		return "Hint: think again, rule out the clearly unrelated options first"
	default:
		return ""
	}
}

// Mask renders a letter hint as "c _ _".
func (h Hint) Mask() string {
	if h.Kind != HintLetters || h.Length == 0 {
		return ""
	}
	parts := make([]string, 0, h.Length)
	parts = append(parts, h.First)
	for i := 1; i < h.Length; i++ {
		parts = append(parts, "_")
	}
	return strings.Join(parts, " ")
}

// Question is the word currently being asked.
type Question struct {
	Word    model.WordPair
	Type    model.QuestionType
	Options []model.WordPair
}

// Prompt returns the side of the word shown to the learner.
func (q Question) Prompt() string {
	if q.Type == model.QuestionEnToZh {
		return q.Word.EN
	}
	return q.Word.ZH
}

// OptionValue returns the text of opt that is displayed and submitted.
func (q Question) OptionValue(opt model.WordPair) string {
	if q.Type == model.QuestionEnToZh {
		return opt.ZH
	}
	return opt.EN
}

// Answer returns the expected answer text.
func (q Question) Answer() string {
	if q.Type == model.QuestionEnToZh {
		return q.Word.ZH
	}
	return q.Word.EN
}

// State is the live state of a run.
type State struct {
	RunID         string
	Mode          model.Mode
	Pool          []model.WordPair
	Index         int
	Hearts        int
	Score         int
	Question      Question
	Input         string
	Stage         Stage
	Hint          Hint
	WrongAttempts int
	GameOver      bool
	StartedAt     time.Time
	EndedAt       time.Time
}

// Active reports whether a run is in progress.
func (s State) Active() bool {
	return s.Stage != StageIdle && s.Stage != StageEnded
}

func (s State) clone() State {
	out := s
	out.Pool = append([]model.WordPair(nil), s.Pool...)
	out.Question.Options = append([]model.WordPair(nil), s.Question.Options...)
	return out
}

// Summary is the output of a finished run.
type Summary struct {
	RunID      string
	Mode       model.Mode
	Score      int
	PoolSize   int
	HeartsLeft int
	GameOver   bool
	Mastered   int
	Total      int
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
