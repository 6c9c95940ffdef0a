package feed

import "github.com/nhle/notifeed/internal/model"

// EmptyState tells the view which empty panel, if any, to render.
type EmptyState int

const (
	// EmptyNone means at least one item is visible.
	EmptyNone EmptyState = iota

	// EmptyNoNotifications means there is nothing to show at all.
	EmptyNoNotifications

	// EmptyAllRemoved means every item of a non-empty page was hidden
	// locally while the server still reports notifications.
	EmptyAllRemoved
)

func (e EmptyState) String() string {
	switch e {
	case EmptyNone:
		return "none"
	case EmptyNoNotifications:
		return "no_notifications"
	case EmptyAllRemoved:
		return "all_removed"
	default:
		return "unknown"
	}
}

// Item is a visible notification with its effective read state.
type Item struct {
	model.Notification

	// Read is true when the server or a local flag says so.
	Read bool
}

// Reconciled is the page as the user should see it.
type Reconciled struct {
	Items      []Item
	PageUnread int
	Empty      EmptyState
}

// EffectiveRead reports whether n is read on the server or locally.
func EffectiveRead(n model.Notification, read model.IDSet) bool {
	return n.IsRead || read.Has(n.ID)
}

// Reconcile drops locally removed items from page, in server order, and
// resolves each remaining item's read state. A nil page reconciles to the
// no-notifications state.
func Reconcile(page *model.FeedPage, read, removed model.IDSet) Reconciled {
	if page == nil {
		return Reconciled{Empty: EmptyNoNotifications}
	}

	r := Reconciled{Items: make([]Item, 0, len(page.Results))}
	for _, n := range page.Results {
		if removed.Has(n.ID) {
			continue
		}
		item := Item{Notification: n, Read: EffectiveRead(n, read)}
		if !item.Read {
			r.PageUnread++
		}
		r.Items = append(r.Items, item)
	}

	switch {
	case len(r.Items) > 0:
		r.Empty = EmptyNone
	case len(page.Results) > 0 && page.Count > 0:
		r.Empty = EmptyAllRemoved
	default:
		r.Empty = EmptyNoNotifications
	}
	return r
}
