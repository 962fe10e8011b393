package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left    key.Binding
	Right   key.Binding
	Play    key.Binding
	EndTurn key.Binding
	Hint    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Play, k.EndTurn, k.Hint, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "previous card"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next card"),
	),
	Play: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "play card"),
	),
	EndTurn: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "rest / end turn"),
	),
	Hint: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "greedy hint"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
