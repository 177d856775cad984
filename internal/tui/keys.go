package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Exit      key.Binding
	Normal    key.Binding
	Review    key.Binding
	Wrong     key.Binding
	WrongList key.Binding
	Reset     key.Binding
	Back      key.Binding
	Up        key.Binding
	Down      key.Binding
	Submit    key.Binding
	Next      key.Binding
	Replay    key.Binding
	Yes       key.Binding
	No        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Exit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Normal:    key.NewBinding(key.WithKeys("1", "n"), key.WithHelp("1", "normal")),
		Review:    key.NewBinding(key.WithKeys("2", "r"), key.WithHelp("2", "review")),
		Wrong:     key.NewBinding(key.WithKeys("3", "w"), key.WithHelp("3", "wrong words")),
		WrongList: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "wrong list")),
		Reset:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset mastery")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "home")),
		Up:        key.NewBinding(key.WithKeys("up", "k")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "answer")),
		Next:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "next")),
		Replay:    key.NewBinding(key.WithKeys("r", "enter"), key.WithHelp("r", "play again")),
		Yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "reset")),
		No:        key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
	}
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return footerStyle.Render(joinDot(parts))
}
