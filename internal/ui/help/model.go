package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notifeed/internal/i18n"
	"github.com/nhle/notifeed/internal/keys"
	"github.com/nhle/notifeed/internal/theme"
)

// paletteCommands lists what the ":" palette accepts.
var paletteCommands = []string{"refresh", "page <n>", "next", "prev", "login", "logout", "quit"}

// Model is the help overlay view: every keybinding, then the palette
// commands.
type Model struct {
	keys         *keys.KeyMap
	help         help.Model
	title        string
	commandTitle string
	width        int
	height       int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, p *i18n.Printer, width, height int) Model {
	h := help.New()
	h.ShowAll = true
	h.Width = width - 4
	return Model{
		keys:         keys,
		help:         h,
		title:        p.T(i18n.MsgKeyHelp),
		commandTitle: p.T(i18n.MsgKeyCommand),
		width:        width,
		height:       height,
	}
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render(m.title)

	commands := theme.HelpStyle.Render(
		": " + m.commandTitle + "  " + strings.Join(paletteCommands, " | "),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.help.View(m.keys), "", commands)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
