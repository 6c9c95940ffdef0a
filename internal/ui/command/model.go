package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notifeed/internal/theme"
)

// Name identifies a palette command.
type Name string

const (
	Refresh Name = "refresh"
	Page    Name = "page"
	Next    Name = "next"
	Prev    Name = "prev"
	Login   Name = "login"
	Logout  Name = "logout"
	Help    Name = "help"
	Quit    Name = "quit"
)

// aliases maps every accepted spelling to its command.
var aliases = map[string]Name{
	"refresh":  Refresh,
	"r":        Refresh,
	"page":     Page,
	"p":        Page,
	"next":     Next,
	"n":        Next,
	"prev":     Prev,
	"previous": Prev,
	"login":    Login,
	"logout":   Logout,
	"help":     Help,
	"quit":     Quit,
	"q":        Quit,
}

// ErrUnknown is returned by Parse for input that names no command.
var ErrUnknown = errors.New("unknown command")

// Command is a parsed palette entry.
type Command struct {
	Name Name
	// Page is the target page of a Page command.
	Page int
}

// Parse turns palette input such as "page 3" into a Command.
func Parse(input string) (Command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknown, input)
	}

	name, ok := aliases[fields[0]]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknown, fields[0])
	}

	args := fields[1:]
	if name != Page {
		if len(args) > 0 {
			return Command{}, fmt.Errorf("%s takes no arguments", name)
		}
		return Command{Name: name}, nil
	}

	if len(args) != 1 {
		return Command{}, errors.New("usage: page <number>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return Command{}, fmt.Errorf("invalid page %q", args[0])
	}
	return Command{Name: Page, Page: n}, nil
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Command Command
	Err     error
	Input   string
}

// CancelMsg is emitted when the palette is dismissed.
type CancelMsg struct{}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	title  string
	width  int
	height int
}

// New creates a new command palette model.
func New(title string, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "refresh | page <n> | next | prev | login | logout | quit"
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		title:  title,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			input := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if input == "" {
				return m, func() tea.Msg { return CancelMsg{} }
			}
			cmd, err := Parse(input)
			return m, func() tea.Msg {
				return CommandMsg{Command: cmd, Err: err, Input: input}
			}
		case "esc":
			m.input.Reset()
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render(m.title)

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.input.View())

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
