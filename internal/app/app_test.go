package app

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notifeed/internal/credential"
	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/ui/command"
	"github.com/nhle/notifeed/internal/ui/login"
	"github.com/nhle/notifeed/internal/ui/notiflist"
)

// fakeFeed records every call the UI makes.
type fakeFeed struct {
	view      feed.View
	paths     map[int64]string
	refreshes int
	pages     []int
	nexts     int
	prevs     int
	marked    []int64
	removed   []int64
	opened    []int64
	disposed  bool
}

func (f *fakeFeed) View() feed.View        { return f.view }
func (f *fakeFeed) WaitForUpdate() tea.Cmd { return func() tea.Msg { return nil } }
func (f *fakeFeed) Refresh()               { f.refreshes++ }
func (f *fakeFeed) SetPage(n int)          { f.pages = append(f.pages, n) }
func (f *fakeFeed) NextPage() bool         { f.nexts++; return true }
func (f *fakeFeed) PrevPage() bool         { f.prevs++; return true }
func (f *fakeFeed) Dispose()               { f.disposed = true }

func (f *fakeFeed) MarkAsRead(id int64) bool {
	f.marked = append(f.marked, id)
	return true
}

func (f *fakeFeed) Remove(id int64) bool {
	f.removed = append(f.removed, id)
	return true
}

func (f *fakeFeed) Open(id int64) (string, bool) {
	f.opened = append(f.opened, id)
	p, ok := f.paths[id]
	return p, ok
}

func item(id int64, actor string, read bool) feed.Item {
	return feed.Item{
		Notification: model.Notification{
			ID:        id,
			Type:      model.NotificationComment,
			ActorName: actor,
			Message:   "commented on your article",
		},
		Read: read,
	}
}

func newFake() *fakeFeed {
	return &fakeFeed{
		view: feed.View{
			Page:        1,
			TotalPages:  2,
			Count:       10,
			Items:       []feed.Item{item(1, "Aung Aung", false), item(2, "Su Su", true)},
			Unread:      3,
			UnreadKnown: true,
			Loaded:      true,
		},
		paths: map[int64]string{1: "/articles/intro-to-go"},
	}
}

type testApp struct {
	m     Model
	feed  *fakeFeed
	creds *credential.MemoryStore
}

func newTestApp(t *testing.T, opener Opener) *testApp {
	t.Helper()
	f := newFake()
	creds := credential.NewMemoryStore()
	logger, _ := test.NewNullLogger()

	m := New(Options{
		Feed:        f,
		Credentials: creds,
		SiteURL:     "https://blog.example.com/",
		Opener:      opener,
		Logger:      logger,
	})
	a := &testApp{m: m, feed: f, creds: creds}
	a.send(t, tea.WindowSizeMsg{Width: 120, Height: 40})
	return a
}

// send delivers msg and returns the resulting command.
func (a *testApp) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := a.m.Update(msg)
	m, ok := next.(Model)
	require.True(t, ok)
	a.m = m
	return cmd
}

// run delivers msg, then delivers the message its command yields.
func (a *testApp) run(t *testing.T, msg tea.Msg) {
	t.Helper()
	if cmd := a.send(t, msg); cmd != nil {
		if out := cmd(); out != nil {
			a.send(t, out)
		}
	}
}

func commandMsg(t *testing.T, input string) tea.Msg {
	t.Helper()
	c, err := command.Parse(input)
	return command.CommandMsg{Command: c, Err: err, Input: input}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (a *testApp) typeText(t *testing.T, s string) {
	t.Helper()
	for _, r := range s {
		a.send(t, runes(string(r)))
	}
}

func TestView_Header(t *testing.T) {
	a := newTestApp(t, nil)

	out := a.m.View()
	assert.Contains(t, out, "Notifications")
	assert.Contains(t, out, "3 unread")
	assert.Contains(t, out, "Page 1 of 2")
	assert.Contains(t, out, "Aung Aung")
}

func TestView_NoBadgeUntilCountKnown(t *testing.T) {
	a := newTestApp(t, nil)
	a.send(t, feed.ViewMsg{View: feed.View{Page: 1, Loaded: true, Empty: feed.EmptyNoNotifications}})

	out := a.m.View()
	assert.NotContains(t, out, "unread")
	assert.NotContains(t, out, "Page 1 of")
	assert.Contains(t, out, "No notifications yet")
}

func TestView_NotReadyBeforeWindowSize(t *testing.T) {
	m := New(Options{Feed: newFake()})
	assert.Equal(t, "Loading notifications...", m.View())
}

func TestUpdate_ViewMsgKeepsListening(t *testing.T) {
	a := newTestApp(t, nil)

	cmd := a.send(t, feed.ViewMsg{View: feed.View{
		Page: 1, TotalPages: 1, Loaded: true,
		Items: []feed.Item{item(5, "Ko Ko", false)},
	}})

	assert.NotNil(t, cmd)
	assert.Contains(t, a.m.View(), "Ko Ko")
	assert.NotContains(t, a.m.View(), "Aung Aung")
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name       string
		opener     func(urls *[]string) Opener
		wantStatus string
		wantURLs   []string
	}{
		{
			name: "launches the article",
			opener: func(urls *[]string) Opener {
				return func(u string) error { *urls = append(*urls, u); return nil }
			},
			wantStatus: "Opened https://blog.example.com/articles/intro-to-go",
			wantURLs:   []string{"https://blog.example.com/articles/intro-to-go"},
		},
		{
			name: "launcher fails",
			opener: func(*[]string) Opener {
				return func(string) error { return errors.New("no browser") }
			},
			wantStatus: "Could not open https://blog.example.com/articles/intro-to-go",
		},
		{
			name:       "no launcher shows the url",
			opener:     func(*[]string) Opener { return nil },
			wantStatus: "Open https://blog.example.com/articles/intro-to-go",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var urls []string
			a := newTestApp(t, tt.opener(&urls))

			cmd := a.send(t, notiflist.OpenMsg{ID: 1})
			require.NotNil(t, cmd)
			a.send(t, cmd())

			assert.Equal(t, []int64{1}, a.feed.opened)
			assert.Equal(t, tt.wantURLs, urls)
			assert.Contains(t, a.m.View(), tt.wantStatus)
		})
	}
}

func TestOpen_NotVisible(t *testing.T) {
	a := newTestApp(t, nil)

	cmd := a.send(t, notiflist.OpenMsg{ID: 9})
	assert.Nil(t, cmd)
	assert.Equal(t, []int64{9}, a.feed.opened)
}

func TestListActions(t *testing.T) {
	a := newTestApp(t, nil)

	a.run(t, runes("m"))
	assert.Equal(t, []int64{1}, a.feed.marked)
	assert.Contains(t, a.m.View(), "Marked as read")

	a.run(t, runes("d"))
	assert.Equal(t, []int64{1}, a.feed.removed)
	assert.Contains(t, a.m.View(), "Notification removed")

	a.run(t, runes("]"))
	a.run(t, runes("["))
	a.run(t, runes("r"))
	assert.Equal(t, 1, a.feed.nexts)
	assert.Equal(t, 1, a.feed.prevs)
	assert.Equal(t, 1, a.feed.refreshes)
}

func TestQuit(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		a := newTestApp(t, nil)

		cmd := a.send(t, k)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
		assert.True(t, a.feed.disposed)
	}
}

func TestQuit_CtrlCFromOverlay(t *testing.T) {
	a := newTestApp(t, nil)
	a.send(t, runes(":"))
	require.Equal(t, ViewCommand, a.m.currentView)

	cmd := a.send(t, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, a.feed.disposed)
}

func TestHelpToggle(t *testing.T) {
	a := newTestApp(t, nil)

	a.send(t, runes("?"))
	assert.Equal(t, ViewHelp, a.m.currentView)
	assert.Contains(t, a.m.View(), "mark read")

	a.send(t, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewList, a.m.currentView)
	assert.False(t, a.feed.disposed)
}

func TestCommandPalette(t *testing.T) {
	tests := []struct {
		input string
		check func(t *testing.T, a *testApp)
	}{
		{input: "page 3", check: func(t *testing.T, a *testApp) {
			assert.Equal(t, []int{3}, a.feed.pages)
		}},
		{input: "refresh", check: func(t *testing.T, a *testApp) {
			assert.Equal(t, 1, a.feed.refreshes)
		}},
		{input: "next", check: func(t *testing.T, a *testApp) {
			assert.Equal(t, 1, a.feed.nexts)
		}},
		{input: "prev", check: func(t *testing.T, a *testApp) {
			assert.Equal(t, 1, a.feed.prevs)
		}},
		{input: "help", check: func(t *testing.T, a *testApp) {
			assert.Equal(t, ViewHelp, a.m.currentView)
		}},
		{input: "login", check: func(t *testing.T, a *testApp) {
			assert.Equal(t, ViewLogin, a.m.currentView)
			assert.Contains(t, a.m.View(), "API token")
		}},
		{input: "bogus", check: func(t *testing.T, a *testApp) {
			assert.Equal(t, ViewList, a.m.currentView)
			assert.Contains(t, a.m.View(), "Unknown command: bogus")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			a := newTestApp(t, nil)
			a.send(t, runes(":"))
			a.typeText(t, tt.input)
			a.run(t, tea.KeyMsg{Type: tea.KeyEnter})
			tt.check(t, a)
		})
	}
}

func TestCommand_Quit(t *testing.T) {
	a := newTestApp(t, nil)

	cmd := a.send(t, commandMsg(t, "quit"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.True(t, a.feed.disposed)
}

func TestCommand_Logout(t *testing.T) {
	a := newTestApp(t, nil)
	require.NoError(t, a.creds.Set(credential.TokenKey, "tok"))

	a.send(t, commandMsg(t, "logout"))

	_, err := a.creds.Get(credential.TokenKey)
	assert.ErrorIs(t, err, credential.ErrNotFound)
	assert.Equal(t, 1, a.feed.refreshes)
	assert.Contains(t, a.m.View(), "Signed out")
}

func TestLoginDone(t *testing.T) {
	a := newTestApp(t, nil)
	a.send(t, commandMsg(t, "login"))
	require.Equal(t, ViewLogin, a.m.currentView)

	a.send(t, login.DoneMsg{})
	assert.Equal(t, ViewList, a.m.currentView)
	assert.Equal(t, 1, a.feed.refreshes)
	assert.Contains(t, a.m.View(), "Signed in")
}

func TestLoginDone_SaveFailed(t *testing.T) {
	a := newTestApp(t, nil)
	a.send(t, commandMsg(t, "login"))

	a.send(t, login.DoneMsg{Err: errors.New("keyring locked")})
	assert.Equal(t, ViewList, a.m.currentView)
	assert.Zero(t, a.feed.refreshes)
	assert.Contains(t, a.m.View(), "keyring locked")
}

func TestEnterOpensSelected(t *testing.T) {
	a := newTestApp(t, nil)

	a.run(t, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []int64{1}, a.feed.opened)
}

func TestCommandOpener(t *testing.T) {
	assert.Nil(t, CommandOpener("  "))
	assert.NotNil(t, CommandOpener("xdg-open"))

	err := CommandOpener("notifeed-no-such-binary")("https://example.com")
	assert.Error(t, err)
}
