package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/wordmonster/internal/model"
	"github.com/verte-zerg/wordmonster/internal/pool"
	"github.com/verte-zerg/wordmonster/internal/session"
	"github.com/verte-zerg/wordmonster/internal/stats"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#595959"))
	heartStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.screen {
	case screenGame:
		body = m.viewGame()
	case screenResult:
		body = m.viewResult()
	case screenConfirmReset:
		body = m.viewConfirmReset()
	case screenWrongList:
		body = m.viewWrongList()
	default:
		body = m.viewHome()
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) viewHome() string {
	words := m.engine.Words()
	mastery, wrong := m.engine.Progress().Snapshot()
	counts := stats.CountWords(words, mastery, wrong)

	lines := []string{
		titleStyle.Render("WORD MONSTER"),
		"",
		textStyle.Render(fmt.Sprintf("Words %d · Mastered %d · Unmastered %d · Wrong %d",
			counts.Total, counts.Mastered, counts.Unmastered, counts.Wrong)),
		"",
	}
	for i, mode := range model.Modes {
		size := pool.Size(mode, words, mastery, wrong)
		line := fmt.Sprintf("[%d] %-7s %d words", i+1, modeLabel(mode), size)
		if size < session.MinPoolSize {
			lines = append(lines, disabledStyle.Render(line))
			continue
		}
		lines = append(lines, textStyle.Render(line))
	}
	if m.notice != "" {
		lines = append(lines, "", hintStyle.Render(m.notice))
	}
	lines = append(lines, "", helpLine(m.keys.Normal, m.keys.Review, m.keys.Wrong, m.keys.WrongList, m.keys.Reset, m.keys.Exit))
	return strings.Join(lines, "\n")
}

func (m *Model) viewGame() string {
	st := m.engine.State()
	q := st.Question
	lines := []string{
		renderHUD(st),
		"",
		textStyle.Render(questionLabel(q.Type)),
		promptStyle.Render(q.Prompt()),
		"",
	}

	if q.Type.IsChoice() {
		lines = append(lines, m.renderOptions(st)...)
	} else {
		if st.Stage == session.StageHinted {
			lines = append(lines, hintStyle.Render(st.Hint.Mask()))
		}
		if st.Stage.Open() {
			lines = append(lines, m.input.View())
		} else {
			lines = append(lines, "> "+st.Input)
		}
	}

	lines = append(lines, "")
	switch st.Stage {
	case session.StageHinted:
		lines = append(lines, hintStyle.Render(st.Hint.Text()))
	case session.StageCorrect:
		lines = append(lines, correctStyle.Render("Correct!"))
	case session.StageWrong:
		lines = append(lines, wrongStyle.Render(fmt.Sprintf("Answer: %s  %s", q.Word.EN, q.Word.ZH)))
		if st.GameOver {
			lines = append(lines, wrongStyle.Render("Out of hearts."))
		}
	}

	lines = append(lines, "")
	if st.Stage.Revealed() {
		next := m.keys.Next
		if st.GameOver {
			next.SetHelp("enter", "results")
		}
		lines = append(lines, helpLine(next, m.keys.Back))
	} else {
		lines = append(lines, helpLine(m.keys.Submit, m.keys.Back))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderOptions(st session.State) []string {
	q := st.Question
	answer := q.Answer()
	lines := make([]string, 0, len(q.Options))
	for i, opt := range q.Options {
		value := q.OptionValue(opt)
		prefix := "  "
		if i == m.selected && st.Stage.Open() {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%d. %s", prefix, i+1, value)
		switch {
		case st.Stage.Revealed() && value == answer:
			line = correctStyle.Render(line)
		case i == m.picked && st.Stage != session.StageAwaiting && value != answer:
			line = wrongStyle.Render(line)
		case i == m.selected && st.Stage.Open():
			line = selectedStyle.Render(line)
		default:
			line = textStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m *Model) viewResult() string {
	summary, ok := m.engine.Summary()
	if !ok {
		return ""
	}
	title := titleStyle.Render("Run complete")
	if summary.GameOver {
		title = wrongStyle.Render("Game over")
	}
	lines := []string{
		title,
		"",
		textStyle.Render(fmt.Sprintf("Score %d / %d", summary.Score, summary.PoolSize)),
		textStyle.Render(fmt.Sprintf("Mastered %d / %d", summary.Mastered, summary.Total)),
		"",
		helpLine(m.keys.Replay, m.keys.Back, m.keys.Exit),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewConfirmReset() string {
	lines := []string{
		titleStyle.Render("Reset mastery?"),
		"",
		textStyle.Render("All words become unmastered. Wrong-answer records are kept."),
		"",
		helpLine(m.keys.Yes, m.keys.No),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewWrongList() string {
	_, wrong := m.engine.Progress().Snapshot()
	entries := stats.WrongList(m.engine.Words(), wrong, stats.DefaultWrongLimit)
	lines := []string{titleStyle.Render("Wrong answers"), ""}
	if len(entries) == 0 {
		lines = append(lines, textStyle.Render("No wrong answers yet."))
	} else {
		maxLines := 0
		if m.height > 0 {
			maxLines = max(1, m.height-4)
		}
		for i, line := range formatWrongLines(entries, m.width) {
			if maxLines > 0 && i >= maxLines {
				break
			}
			lines = append(lines, textStyle.Render(line))
		}
	}
	lines = append(lines, "", helpLine(m.keys.Back))
	return strings.Join(lines, "\n")
}

func formatWrongLines(entries []stats.WrongEntry, width int) []string {
	enWidth, zhWidth := 0, 0
	for _, e := range entries {
		enWidth = max(enWidth, runewidth.StringWidth(e.Word.EN))
		zhWidth = max(zhWidth, runewidth.StringWidth(e.Word.ZH))
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := fmt.Sprintf("%s  %s  ×%d",
			runewidth.FillRight(e.Word.EN, enWidth),
			runewidth.FillRight(e.Word.ZH, zhWidth),
			e.Count)
		if width > 0 {
			line = runewidth.Truncate(line, width, "…")
		}
		lines = append(lines, line)
	}
	return lines
}

func renderHUD(st session.State) string {
	hearts := strings.Repeat("♥", st.Hearts) + strings.Repeat("♡", max(0, session.StartingHearts-st.Hearts))
	info := fmt.Sprintf("Score %d  %d/%d  %s · %s",
		st.Score, st.Index+1, len(st.Pool), modeLabel(st.Mode), typeLabel(st.Question.Type))
	return heartStyle.Render(hearts) + "  " + footerStyle.Render(info)
}

func modeLabel(mode model.Mode) string {
	switch mode {
	case model.ModeReview:
		return "Review"
	case model.ModeWrong:
		return "Wrong"
	default:
		return "Normal"
	}
}

func typeLabel(qt model.QuestionType) string {
	switch qt {
	case model.QuestionEnToZh:
		return "EN→ZH"
	case model.QuestionZhToEn:
		return "ZH→EN"
	default:
		return "Spell"
	}
}

func questionLabel(qt model.QuestionType) string {
	switch qt {
	case model.QuestionEnToZh:
		return "Pick the Chinese meaning"
	case model.QuestionZhToEn:
		return "Pick the English word"
	default:
		return "Spell the English word"
	}
}

func joinDot(parts []string) string {
	return strings.Join(parts, " · ")
}
