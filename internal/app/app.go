package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/notifeed/internal/credential"
	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/i18n"
	"github.com/nhle/notifeed/internal/keys"
	"github.com/nhle/notifeed/internal/ui"
	"github.com/nhle/notifeed/internal/ui/command"
	helpview "github.com/nhle/notifeed/internal/ui/help"
	"github.com/nhle/notifeed/internal/ui/login"
	"github.com/nhle/notifeed/internal/ui/notiflist"
)

// Feed is the part of feed.Subsystem the UI drives.
type Feed interface {
	View() feed.View
	WaitForUpdate() tea.Cmd
	Refresh()
	SetPage(n int)
	NextPage() bool
	PrevPage() bool
	MarkAsRead(id int64) bool
	Remove(id int64) bool
	Open(id int64) (string, bool)
	Dispose()
}

var _ Feed = (*feed.Subsystem)(nil)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewHelp
	ViewCommand
	ViewLogin
)

// openedMsg reports the result of launching a URL.
type openedMsg struct {
	url string
	err error
}

// statusMsg replaces the status bar text.
type statusMsg string

// Options wires the root model to the rest of the application.
type Options struct {
	Feed        Feed
	Credentials credential.Store
	Printer     *i18n.Printer

	// SiteURL is prefixed to article paths.
	SiteURL string

	// Opener launches article URLs. When nil the URL is shown in the
	// status bar instead.
	Opener Opener

	Logger logrus.FieldLogger
}

// Model is the root Bubble Tea model that routes input between the
// notification list and its overlays.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	printer      *i18n.Printer
	feed         Feed
	creds        credential.Store
	siteURL      string
	opener       Opener
	log          logrus.FieldLogger

	list        notiflist.Model
	helpView    helpview.Model
	commandView command.Model
	loginView   login.Model

	view   feed.View
	status string
	ready  bool
}

// New creates the root application model.
func New(opts Options) Model {
	p := opts.Printer
	if p == nil {
		p = i18n.New("en")
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	creds := opts.Credentials
	if creds == nil {
		creds = credential.NewMemoryStore()
	}
	k := keys.DefaultKeyMap(p)

	m := Model{
		currentView: ViewList,
		keys:        k,
		printer:     p,
		feed:        opts.Feed,
		creds:       creds,
		siteURL:     strings.TrimRight(opts.SiteURL, "/"),
		opener:      opts.Opener,
		log:         log,
		list:        notiflist.New(k, p, 80, 24),
		helpView:    helpview.New(k, p, 80, 24),
		commandView: command.New(p.T(i18n.MsgKeyCommand), 80, 24),
		loginView:   login.New(creds, p, 80, 24),
	}
	m.view = opts.Feed.View()
	m.list.SetView(m.view)
	return m
}

// Init starts the spinner and begins listening for feed snapshots.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.list.Init(),
		m.feed.WaitForUpdate(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.Width, m.layout.ContentHeight()
		m.list.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.loginView.SetSize(w, h)
		return m, nil

	case feed.ViewMsg:
		m.view = msg.View
		return m, tea.Batch(m.list.SetView(msg.View), m.feed.WaitForUpdate())

	case notiflist.OpenMsg:
		path, ok := m.feed.Open(msg.ID)
		if !ok {
			return m, nil
		}
		return m, m.openURL(m.siteURL + path)

	case openedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).WithField("url", msg.url).Warn("opening article")
			m.status = m.printer.T(i18n.MsgOpenFailed, msg.url)
		} else {
			m.status = m.printer.T(i18n.MsgOpened, msg.url)
		}
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case notiflist.MarkReadMsg:
		if m.feed.MarkAsRead(msg.ID) {
			m.status = m.printer.T(i18n.MsgMarkedRead)
		}
		return m, nil

	case notiflist.RemoveMsg:
		if m.feed.Remove(msg.ID) {
			m.status = m.printer.T(i18n.MsgRemoved)
		}
		return m, nil

	case notiflist.NextPageMsg:
		m.feed.NextPage()
		return m, nil

	case notiflist.PrevPageMsg:
		m.feed.PrevPage()
		return m, nil

	case notiflist.RefreshMsg:
		m.feed.Refresh()
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		if msg.Err != nil {
			m.status = m.printer.T(i18n.MsgUnknownCommand, msg.Input)
			return m, nil
		}
		return m, m.executeCommand(msg.Command)

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case login.DoneMsg:
		m.currentView = ViewList
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("saving api token")
			m.status = msg.Err.Error()
			return m, nil
		}
		m.status = m.printer.T(i18n.MsgSignedIn)
		m.feed.Refresh()
		return m, nil

	case login.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}

		switch m.currentView {
		case ViewList:
			m.status = ""
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, m.quit()
			case key.Matches(msg, m.keys.Help):
				m.previousView = m.currentView
				m.currentView = ViewHelp
				return m, nil
			case key.Matches(msg, m.keys.Command):
				m.previousView = m.currentView
				m.currentView = ViewCommand
				return m, m.commandView.Focus()
			}

		case ViewHelp:
			if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
				m.currentView = m.previousView
				return m, nil
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.list, cmd = m.list.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	}

	return m, cmd
}

// executeCommand runs a parsed palette command.
func (m *Model) executeCommand(c command.Command) tea.Cmd {
	switch c.Name {
	case command.Refresh:
		m.feed.Refresh()
	case command.Page:
		m.feed.SetPage(c.Page)
	case command.Next:
		m.feed.NextPage()
	case command.Prev:
		m.feed.PrevPage()
	case command.Help:
		m.previousView = ViewList
		m.currentView = ViewHelp
	case command.Login:
		m.previousView = ViewList
		m.currentView = ViewLogin
		m.loginView.Reset()
		return m.loginView.Init()
	case command.Logout:
		if err := m.creds.Delete(credential.TokenKey); err != nil {
			m.log.WithError(err).Warn("deleting api token")
			m.status = err.Error()
			return nil
		}
		m.status = m.printer.T(i18n.MsgLoggedOut)
		m.feed.Refresh()
	case command.Quit:
		return m.quit()
	}
	return nil
}

// quit tears the feed down before leaving the program.
func (m Model) quit() tea.Cmd {
	m.feed.Dispose()
	return tea.Quit
}

func (m Model) openURL(url string) tea.Cmd {
	if m.opener == nil {
		return func() tea.Msg {
			return statusMsg(m.printer.T(i18n.MsgOpenURL, url))
		}
	}
	open := m.opener
	return func() tea.Msg {
		return openedMsg{url: url, err: open(url)}
	}
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return m.printer.T(i18n.MsgLoading)
	}

	header := m.layout.RenderHeader(m.printer.T(i18n.MsgTitle), m.unreadBadge(), m.pageStatus())
	statusBar := m.layout.RenderStatusBar(m.statusText())

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewLogin:
		return m.loginView.View()
	default:
		return m.list.View()
	}
}

// unreadBadge is empty until the first unread count arrives and while
// nothing is unread.
func (m Model) unreadBadge() string {
	if !m.view.UnreadKnown || m.view.Unread <= 0 {
		return ""
	}
	return m.printer.T(i18n.MsgUnread, m.view.Unread)
}

func (m Model) pageStatus() string {
	if m.view.TotalPages <= 0 {
		return ""
	}
	return m.printer.T(i18n.MsgPageOf, m.view.Page, m.view.TotalPages)
}

func (m Model) statusText() string {
	if m.status != "" && m.currentView == ViewList {
		return m.status
	}
	return m.keyHints()
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewLogin:
		return "enter save | esc cancel"
	default:
		hints := make([]string, 0, len(m.keys.ShortHelp()))
		for _, b := range m.keys.ShortHelp() {
			h := b.Help()
			hints = append(hints, fmt.Sprintf("%s %s", h.Key, h.Desc))
		}
		return strings.Join(hints, " | ")
	}
}
