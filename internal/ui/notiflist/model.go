package notiflist

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notifeed/internal/api"
	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/i18n"
	"github.com/nhle/notifeed/internal/keys"
	"github.com/nhle/notifeed/internal/theme"
)

// OpenMsg asks the app to open the notification's article.
type OpenMsg struct{ ID int64 }

// MarkReadMsg asks the app to mark an unread notification read.
type MarkReadMsg struct{ ID int64 }

// RemoveMsg asks the app to remove a notification.
type RemoveMsg struct{ ID int64 }

// NextPageMsg and PrevPageMsg ask the app to change page.
type (
	NextPageMsg struct{}
	PrevPageMsg struct{}
)

// RefreshMsg asks the app to re-fetch the current page.
type RefreshMsg struct{}

// Model is the notification list view.
type Model struct {
	list    list.Model
	spinner spinner.Model
	keys    *keys.KeyMap
	printer *i18n.Printer
	view    feed.View
	width   int
	height  int
}

// New creates a notification list model.
func New(k *keys.KeyMap, p *i18n.Printer, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{printer: p}, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)

	// Paging is server-side; the app owns quitting.
	l.KeyMap.NextPage.SetEnabled(false)
	l.KeyMap.PrevPage.SetEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		list:    l,
		spinner: sp,
		keys:    k,
		printer: p,
		width:   width,
		height:  height,
	}
}

// Init starts the loading spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetView replaces the displayed snapshot, keeping the cursor position.
func (m *Model) SetView(v feed.View) tea.Cmd {
	m.view = v

	items := make([]list.Item, len(v.Items))
	for i, it := range v.Items {
		items[i] = Item{Item: it}
	}

	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	return cmd
}

// Selected returns the highlighted notification.
func (m Model) Selected() (feed.Item, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return feed.Item{}, false
	}
	return it.Item, true
}

// Update handles messages for the notification list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m, emit(RefreshMsg{})

	case key.Matches(msg, m.keys.NextPage):
		return m, emit(NextPageMsg{})

	case key.Matches(msg, m.keys.PrevPage):
		return m, emit(PrevPageMsg{})

	case key.Matches(msg, m.keys.Open):
		if it, ok := m.Selected(); ok {
			return m, emit(OpenMsg{ID: it.ID})
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		if it, ok := m.Selected(); ok && !it.Read {
			return m, emit(MarkReadMsg{ID: it.ID})
		}
		return m, nil

	case key.Matches(msg, m.keys.Remove):
		if it, ok := m.Selected(); ok {
			return m, emit(RemoveMsg{ID: it.ID})
		}
		return m, nil
	}

	// Cursor movement.
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// View renders the list or the panel that replaces it.
func (m Model) View() string {
	v := m.view

	if v.Err != nil {
		panel := m.renderError()
		if len(v.Items) == 0 {
			return panel
		}
		return lipgloss.JoinVertical(lipgloss.Left, panel, m.list.View())
	}

	if !v.Loaded {
		if v.Loading {
			return m.center(m.spinner.View() + " " + m.printer.T(i18n.MsgLoading))
		}
		return m.center(m.printer.T(i18n.MsgLoading))
	}

	switch v.Empty {
	case feed.EmptyAllRemoved:
		return m.center(m.printer.T(i18n.MsgAllRemoved) + "\n\n" +
			theme.HelpStyle.Render(m.printer.T(i18n.MsgRefreshHint)))
	case feed.EmptyNoNotifications:
		return m.center(m.printer.T(i18n.MsgEmpty) + "\n\n" +
			theme.HelpStyle.Render(m.printer.T(i18n.MsgEmptyHint)))
	}

	return m.list.View()
}

func (m Model) renderError() string {
	detail := m.view.Err.Error()
	if errors.Is(m.view.Err, api.ErrNoCredential) || api.IsAuthError(m.view.Err) {
		detail = m.printer.T(i18n.MsgSignedOut)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.ErrorStyle.Render(m.printer.T(i18n.MsgLoadFailed)),
		theme.DimmedStyle.Render(detail),
		"",
		theme.HelpStyle.Render(m.printer.T(i18n.MsgRetryHint)),
	)
	return theme.ErrorPanelStyle.Width(m.width - 4).Render(body)
}

func (m Model) center(s string) string {
	return theme.EmptyPanelStyle.
		Width(m.width).
		Align(lipgloss.Center).
		Render(s)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
