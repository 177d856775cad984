// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/wordmonster/internal/model"
	"github.com/verte-zerg/wordmonster/internal/session"
)

type screen int

const (
	screenHome screen = iota
	screenGame
	screenResult
	screenConfirmReset
	screenWrongList
)

// Model implements the Bubble Tea quiz UI.
type Model struct {
	engine *session.Engine
	log    zerolog.Logger
	keys   keyMap
	input  textinput.Model

	screen   screen
	mode     model.Mode
	selected int
	picked   int
	notice   string

	width  int
	height int
}

// NewModel constructs a quiz TUI on top of engine.
func NewModel(engine *session.Engine, logger zerolog.Logger) *Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "type the English word"
	input.CharLimit = 64
	m := &Model{
		engine: engine,
		log:    logger,
		keys:   defaultKeyMap(),
		input:  input,
		picked: -1,
	}
	if st := engine.State(); st.Active() {
		m.mode = st.Mode
		m.screen = screenGame
	}
	return m
}

// Init implements tea.Model. A model built over a running engine opens on
// the game screen.
func (m *Model) Init() tea.Cmd {
	if m.screen == screenGame {
		return m.syncQuestion()
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		switch m.screen {
		case screenHome:
			return m.updateHome(msg)
		case screenGame:
			return m.updateGame(msg)
		case screenResult:
			return m.updateResult(msg)
		case screenConfirmReset:
			return m.updateConfirmReset(msg)
		case screenWrongList:
			if key.Matches(msg, m.keys.Back, m.keys.WrongList, m.keys.Exit) {
				m.screen = screenHome
			}
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Exit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Normal):
		return m, m.start(model.ModeNormal)
	case key.Matches(msg, m.keys.Review):
		return m, m.start(model.ModeReview)
	case key.Matches(msg, m.keys.Wrong):
		return m, m.start(model.ModeWrong)
	case key.Matches(msg, m.keys.WrongList):
		m.notice = ""
		m.screen = screenWrongList
	case key.Matches(msg, m.keys.Reset):
		m.notice = ""
		m.screen = screenConfirmReset
	}
	return m, nil
}

func (m *Model) updateGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.goHome()
		return m, nil
	}
	st := m.engine.State()
	if st.Stage.Revealed() {
		if key.Matches(msg, m.keys.Next) {
			if st.GameOver {
				m.engine.EndRun()
			} else {
				m.engine.Advance()
			}
			return m, m.syncQuestion()
		}
		return m, nil
	}

	if st.Question.Type == model.QuestionSpell {
		if key.Matches(msg, m.keys.Submit) {
			m.engine.SubmitSpelling(m.input.Value())
			after := m.engine.State()
			m.input.SetValue(after.Input)
			if after.Stage.Revealed() {
				m.input.Blur()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.engine.SetInput(m.input.Value())
		return m, cmd
	}

	options := st.Question.Options
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(options)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Submit):
		m.pick(st.Question, m.selected)
	default:
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(options) {
			m.selected = n - 1
			m.pick(st.Question, n-1)
		}
	}
	return m, nil
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Replay):
		return m, m.start(m.mode)
	case key.Matches(msg, m.keys.Back):
		m.goHome()
	case key.Matches(msg, m.keys.Exit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateConfirmReset(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		m.engine.ResetMastery()
		m.notice = "Mastery progress cleared."
		m.screen = screenHome
	case key.Matches(msg, m.keys.No):
		m.screen = screenHome
	}
	return m, nil
}

func (m *Model) start(mode model.Mode) tea.Cmd {
	if err := m.engine.Start(mode); err != nil {
		if errors.Is(err, session.ErrNotEnoughWords) {
			m.notice = fmt.Sprintf("Not enough words for %s mode (need %d).", mode, session.MinPoolSize)
		} else {
			m.notice = err.Error()
		}
		m.log.Warn().Err(err).Str("mode", mode.String()).Msg("cannot start run")
		m.goHome()
		return nil
	}
	m.mode = mode
	m.notice = ""
	m.screen = screenGame
	return m.syncQuestion()
}

func (m *Model) goHome() {
	m.engine.ReturnHome()
	m.input.Blur()
	m.screen = screenHome
}

// syncQuestion resets per-question UI state after the engine moved on.
func (m *Model) syncQuestion() tea.Cmd {
	st := m.engine.State()
	if st.Stage == session.StageEnded {
		m.input.Blur()
		m.screen = screenResult
		return nil
	}
	m.selected = 0
	m.picked = -1
	m.input.Reset()
	if st.Question.Type == model.QuestionSpell {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m *Model) pick(q session.Question, index int) {
	if index < 0 || index >= len(q.Options) {
		return
	}
	m.picked = index
	m.engine.SubmitChoice(q.OptionValue(q.Options[index]))
}
