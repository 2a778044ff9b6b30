package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	submit    key.Binding
	recommend key.Binding
	refresh   key.Binding
	toggle    key.Binding
	back      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		recommend: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "recommend")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		toggle:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear/back")),
		quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.submit, k.recommend, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.submit},
		{k.recommend, k.refresh, k.toggle},
		{k.back, k.quit},
	}
}
