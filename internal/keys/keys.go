package keys

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/nhle/notifeed/internal/i18n"
)

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Pagination
	NextPage key.Binding
	PrevPage key.Binding

	// Notification actions
	Open     key.Binding
	MarkRead key.Binding
	Remove   key.Binding

	// Manual refresh, also the retry action
	Refresh key.Binding

	Back    key.Binding
	Quit    key.Binding
	Command key.Binding
	Help    key.Binding
}

// DefaultKeyMap returns the default set of keybindings with help text in
// the printer's language.
func DefaultKeyMap(p *i18n.Printer) *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "right"),
			key.WithHelp("]/→", p.T(i18n.MsgKeyNext)),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "left"),
			key.WithHelp("[/←", p.T(i18n.MsgKeyPrev)),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", p.T(i18n.MsgKeyOpen)),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", p.T(i18n.MsgKeyMarkRead)),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", p.T(i18n.MsgKeyRemove)),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", p.T(i18n.MsgKeyRefresh)),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", p.T(i18n.MsgKeyQuit)),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", p.T(i18n.MsgKeyCommand)),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", p.T(i18n.MsgKeyHelp)),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Open, k.MarkRead, k.Remove, k.NextPage, k.PrevPage,
		k.Refresh, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage},
		{k.Open, k.MarkRead, k.Remove, k.Refresh},
		{k.Command, k.Help, k.Back, k.Quit},
	}
}
