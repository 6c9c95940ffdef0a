package notiflist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/i18n"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/theme"
)

// now is the clock used for relative times.
var now = time.Now

// Item wraps a reconciled notification for bubbles/list.
type Item struct {
	feed.Item
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.ActorName + " " + i.Message }

// ItemDelegate renders notifications on two lines: who did what, then the
// article and when.
type ItemDelegate struct {
	printer *i18n.Printer
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single notification.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	isSelected := index == m.Index()

	dot := " "
	if !it.Read {
		dot = theme.UnreadDotStyle.Render("●")
	}

	badge := theme.KindStyle(it.Type).Render(d.kindLabel(it.Type))

	actor := lipgloss.NewStyle().Bold(!it.Read).Render(it.ActorName)
	first := fmt.Sprintf("%s %s %s %s", dot, badge, actor, it.Message)

	var second []string
	if title := articleTitle(it.Notification); title != "" {
		second = append(second, title)
	}
	if preview := it.Data.Preview; preview != "" {
		second = append(second, fmt.Sprintf("%q", truncate(preview, 60)))
	}
	if when := timeAgo(it.Notification); when != "" {
		second = append(second, when)
	}
	detail := theme.DimmedStyle.Render("    " + strings.Join(second, " · "))

	if it.Read {
		first = theme.DimmedStyle.Render(first)
	}

	line := lipgloss.JoinVertical(lipgloss.Left, first, detail)
	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

func (d ItemDelegate) kindLabel(t model.NotificationType) string {
	switch t {
	case model.NotificationComment:
		return d.printer.T(i18n.MsgKindComment)
	case model.NotificationReply:
		return d.printer.T(i18n.MsgKindReply)
	case model.NotificationReaction:
		return d.printer.T(i18n.MsgKindReaction)
	default:
		return string(t)
	}
}

func articleTitle(n model.Notification) string {
	if n.ArticleTitle != "" {
		return n.ArticleTitle
	}
	return n.Data.ArticleTitle
}

// timeAgo prefers the server's relative time and falls back to computing
// one from created_at.
func timeAgo(n model.Notification) string {
	if n.TimeAgo != "" {
		return n.TimeAgo
	}
	return relativeTime(n.CreatedAt)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now().Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
