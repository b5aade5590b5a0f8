package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	all       key.Binding
	today     key.Binding
	yesterday key.Binding
	week      key.Binding
	month     key.Binding
	refresh   key.Binding
	stats     key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		all:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
		today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		yesterday: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yesterday")),
		week:      key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "week")),
		month:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "month")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		stats:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stats")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.refresh, k.stats, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down},
		{k.all, k.today, k.yesterday, k.week, k.month},
		{k.refresh, k.stats, k.quit},
	}
}
