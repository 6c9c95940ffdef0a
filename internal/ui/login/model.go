package login

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notifeed/internal/credential"
	"github.com/nhle/notifeed/internal/i18n"
	"github.com/nhle/notifeed/internal/theme"
)

// DoneMsg reports the outcome of saving the token.
type DoneMsg struct {
	Err error
}

// CancelMsg is emitted when the form is dismissed without saving.
type CancelMsg struct{}

// Model is the API token form.
type Model struct {
	form    *huh.Form
	token   *string
	store   credential.Store
	printer *i18n.Printer
	width   int
	height  int
}

// New creates a login form that writes the token to store.
func New(store credential.Store, p *i18n.Printer, width, height int) Model {
	m := Model{
		store:   store,
		printer: p,
		width:   width,
		height:  height,
	}
	m.Reset()
	return m
}

// Reset clears the form for another run.
func (m *Model) Reset() {
	m.token = new(string)
	m.form = m.buildForm()
}

func (m Model) buildForm() *huh.Form {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc", "ctrl+c"))

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(m.printer.T(i18n.MsgTokenTitle)).
				Description(m.printer.T(i18n.MsgTokenDescription)).
				EchoMode(huh.EchoModePassword).
				Value(m.token).
				Validate(m.validate),
		),
	).WithKeyMap(km).WithWidth(m.formWidth())
}

func (m Model) validate(s string) error {
	err := credential.Validate(s)
	if errors.Is(err, credential.ErrNotFound) {
		return errors.New(m.printer.T(i18n.MsgTokenRequired))
	}
	return err
}

func (m Model) formWidth() int {
	if m.width > 8 {
		return m.width - 8
	}
	return m.width
}

// Init focuses the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the login form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.save(strings.TrimSpace(*m.token))
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

func (m Model) save(token string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return DoneMsg{Err: s.Set(credential.TokenKey, token)}
	}
}

// View renders the form.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render(m.printer.T(i18n.MsgTokenTitle))

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.form.View())

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.form = m.form.WithWidth(m.formWidth())
}
