// Package session runs a quiz: it builds the pool, serves questions, grades
// answers in two stages and keeps learner progress up to date.
//
// Every operation is total. Calls that do not apply to the current stage are
// ignored and reported as such instead of failing.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/wordmonster/internal/generator"
	"github.com/verte-zerg/wordmonster/internal/model"
	"github.com/verte-zerg/wordmonster/internal/pool"
	"github.com/verte-zerg/wordmonster/internal/progress"
)

const (
	// StartingHearts is the number of second-strike mistakes a run tolerates.
	StartingHearts = 3
	// MinPoolSize is the smallest pool a run can start with.
	MinPoolSize = 4
)

// ErrNotEnoughWords is returned by Start when the mode has too few eligible words.
var ErrNotEnoughWords = errors.New("no eligible words")

// QuestionSource shuffles pools and builds questions.
type QuestionSource interface {
	pool.Shuffler
	ChooseType() model.QuestionType
	BuildOptions(correct model.WordPair, pool []model.WordPair, count int) []model.WordPair
}

// RunRecorder stores finished runs.
type RunRecorder interface {
	InsertRun(ctx context.Context, run model.RunRecord) (int64, error)
}

// Engine drives one run at a time. It is not safe for concurrent use.
type Engine struct {
	words    []model.WordPair
	progress *progress.Store
	gen      QuestionSource
	recorder RunRecorder
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string

	state State
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder records finished runs.
func WithRecorder(r RunRecorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an idle engine over words.
func NewEngine(words []model.WordPair, ps *progress.Store, gen QuestionSource, opts ...Option) *Engine {
	e := &Engine{
		words:    words,
		progress: ps,
		gen:      gen,
		log:      zerolog.Nop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Words returns the word list the engine draws from.
func (e *Engine) Words() []model.WordPair {
	return e.words
}

// Progress returns the progress store the engine updates.
func (e *Engine) Progress() *progress.Store {
	return e.progress
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	return e.state.clone()
}

// Start begins a new run in mode, replacing any run in progress. When the mode
// has fewer than MinPoolSize eligible words it returns ErrNotEnoughWords and
// leaves the current state untouched.
func (e *Engine) Start(mode model.Mode) error {
	mastery, wrong := e.progress.Snapshot()
	p := pool.Build(mode, e.words, mastery, wrong, e.gen)
	if len(p) < MinPoolSize {
		return fmt.Errorf("%w: %s mode has %d, need %d", ErrNotEnoughWords, mode, len(p), MinPoolSize)
	}
	e.state = State{
		RunID:     e.newID(),
		Mode:      mode,
		Pool:      p,
		Hearts:    StartingHearts,
		StartedAt: e.now(),
	}
	e.loadQuestion(0)
	e.log.Debug().Str("run", e.state.RunID).Str("mode", mode.String()).Int("pool", len(p)).Msg("run started")
	return nil
}

// SetInput updates the spelling buffer of an open spelling question.
func (e *Engine) SetInput(text string) {
	if !e.state.Stage.Open() || e.state.Question.Type != model.QuestionSpell {
		return
	}
	e.state.Input = text
}

// SubmitChoice grades a picked option value on a choice question.
func (e *Engine) SubmitChoice(value string) Outcome {
	if !e.state.Stage.Open() || !e.state.Question.Type.IsChoice() {
		return OutcomeIgnored
	}
	return e.grade(value == e.state.Question.Answer())
}

// SubmitSpelling grades text on a spelling question. Blank input is ignored.
func (e *Engine) SubmitSpelling(text string) Outcome {
	if !e.state.Stage.Open() || e.state.Question.Type != model.QuestionSpell {
		return OutcomeIgnored
	}
	e.state.Input = text
	if isBlank(text) {
		return OutcomeIgnored
	}
	outcome := e.grade(model.Key(text) == model.Key(e.state.Question.Word.EN))
	if outcome != OutcomeCorrect {
		e.state.Input = ""
	}
	return outcome
}

func (e *Engine) grade(correct bool) Outcome {
	word := e.state.Question.Word
	if correct {
		e.progress.MarkMastered(word)
		e.state.Stage = StageCorrect
		e.state.Hint = Hint{}
		e.state.Score++
		e.log.Debug().Str("word", word.Key()).Msg("answered correctly")
		return OutcomeCorrect
	}

	e.progress.IncrementWrong(word)
	if e.state.WrongAttempts == 0 {
		e.state.WrongAttempts = 1
		e.state.Stage = StageHinted
		e.state.Hint = hintFor(e.state.Question)
		e.log.Debug().Str("word", word.Key()).Msg("first wrong attempt")
		return OutcomeHint
	}

	e.state.WrongAttempts = 2
	e.state.Stage = StageWrong
	e.state.Hint = Hint{}
	e.state.Hearts--
	if e.state.Hearts <= 0 {
		e.state.Hearts = 0
		e.state.GameOver = true
	}
	e.log.Debug().Str("word", word.Key()).Int("hearts", e.state.Hearts).Bool("game_over", e.state.GameOver).Msg("answer revealed")
	return OutcomeWrong
}

// Advance moves past a decided question. It returns false when the question is
// still open or the run is over; past the last word the run ends.
func (e *Engine) Advance() bool {
	if !e.state.Stage.Revealed() || e.state.GameOver {
		return false
	}
	next := e.state.Index + 1
	if next >= len(e.state.Pool) {
		e.end()
		return true
	}
	e.loadQuestion(next)
	return true
}

// EndRun finishes a run whose hearts ran out. It returns false in any other state.
func (e *Engine) EndRun() bool {
	if !e.state.GameOver || e.state.Stage != StageWrong {
		return false
	}
	e.end()
	return true
}

// Summary returns the result of a finished run.
func (e *Engine) Summary() (Summary, bool) {
	if e.state.Stage != StageEnded {
		return Summary{}, false
	}
	return Summary{
		RunID:      e.state.RunID,
		Mode:       e.state.Mode,
		Score:      e.state.Score,
		PoolSize:   len(e.state.Pool),
		HeartsLeft: e.state.Hearts,
		GameOver:   e.state.GameOver,
		Mastered:   e.progress.MasteredCount(e.words),
		Total:      len(e.words),
	}, true
}

// ReturnHome abandons the current run.
func (e *Engine) ReturnHome() {
	e.state = State{}
}

// ResetMastery clears mastery progress. Wrong counts are kept. Callers are
// expected to confirm with the learner first.
func (e *Engine) ResetMastery() {
	e.progress.ResetMastery()
	e.log.Info().Msg("mastery reset")
}

func (e *Engine) loadQuestion(index int) {
	word := e.state.Pool[index]
	qt := e.gen.ChooseType()
	var options []model.WordPair
	if qt.IsChoice() {
		options = e.gen.BuildOptions(word, e.state.Pool, generator.DefaultOptionCount)
	}
	e.state.Index = index
	e.state.Question = Question{Word: word, Type: qt, Options: options}
	e.state.Input = ""
	e.state.Stage = StageAwaiting
	e.state.Hint = Hint{}
	e.state.WrongAttempts = 0
}

func (e *Engine) end() {
	e.state.Stage = StageEnded
	e.state.EndedAt = e.now()
	summary, _ := e.Summary()
	e.log.Info().
		Str("run", summary.RunID).
		Str("mode", summary.Mode.String()).
		Int("score", summary.Score).
		Int("pool", summary.PoolSize).
		Bool("game_over", summary.GameOver).
		Msg("run finished")
	if e.recorder == nil {
		return
	}
	record := model.RunRecord{
		RunID:         summary.RunID,
		Mode:          summary.Mode,
		StartedAt:     e.state.StartedAt,
		EndedAt:       e.state.EndedAt,
		PoolSize:      summary.PoolSize,
		Score:         summary.Score,
		HeartsLeft:    summary.HeartsLeft,
		GameOver:      summary.GameOver,
		MasteredAfter: summary.Mastered,
	}
	if _, err := e.recorder.InsertRun(context.Background(), record); err != nil {
		e.log.Error().Err(err).Str("run", summary.RunID).Msg("failed to save run")
	}
}
