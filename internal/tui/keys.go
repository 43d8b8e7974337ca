package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Restart key.Binding
	Again   key.Binding
	Reload  key.Binding
	Skip    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Restart: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "restart"),
		),
		Again: key.NewBinding(
			key.WithKeys("enter", "tab"),
			key.WithHelp("enter/tab", "play again"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload phrases"),
		),
		Skip: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next phrase"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// bindingSet adapts a slice of bindings to help.KeyMap.
type bindingSet []key.Binding

func (b bindingSet) ShortHelp() []key.Binding { return b }

func (b bindingSet) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

func newHelp() help.Model {
	h := help.New()
	h.Styles.ShortKey = helpKeyStyle
	h.Styles.ShortDesc = footerStyle
	h.Styles.ShortSeparator = footerStyle
	return h
}
