package model

import (
	"fmt"
	"sort"
	"time"
)

// PageSize is the number of notifications the server returns per feed page.
const PageSize = 8

// NotificationType identifies the activity that produced a notification.
type NotificationType string

const (
	NotificationComment  NotificationType = "comment"
	NotificationReply    NotificationType = "reply"
	NotificationReaction NotificationType = "reaction"
)

// Valid reports whether t is one of the known notification kinds.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationComment, NotificationReply, NotificationReaction:
		return true
	default:
		return false
	}
}

// NotificationData is the kind-dependent payload attached to a notification.
type NotificationData struct {
	ArticleSlug  string `json:"article_slug,omitempty"`
	ArticleTitle string `json:"article_title,omitempty"`

	// ReactionType is set for reaction notifications (e.g. "like", "love").
	ReactionType string `json:"reaction_type,omitempty"`

	// Preview is a short excerpt of the comment or reply body.
	Preview string `json:"preview,omitempty"`

	// CommentID is the comment a reply was posted on.
	CommentID int64 `json:"comment_id,omitempty"`
	ParentID  int64 `json:"parent_id,omitempty"`
}

// Notification is a single server-owned notification. The client never
// mutates it; local read/removed decisions live in the flag store.
type Notification struct {
	ID           int64            `json:"id"`
	Type         NotificationType `json:"notification_type"`
	Message      string           `json:"message"`
	ActorName    string           `json:"actor_name"`
	ActorAvatar  string           `json:"actor_avatar"`
	ActorSlug    string           `json:"actor_slug"`
	Data         NotificationData `json:"data"`
	ArticleSlug  string           `json:"article_slug"`
	ArticleTitle string           `json:"article_title"`
	IsRead       bool             `json:"is_read"`
	CreatedAt    time.Time        `json:"created_at"`
	TimeAgo      string           `json:"time_ago"`
}

// FeedPage is one page of the paginated notification feed.
type FeedPage struct {
	// Count is the total number of notifications across all pages.
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []Notification `json:"results"`
}

// TotalPages returns ceil(count / pageSize), or 0 when there is nothing to page.
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// ArticlePath returns the site-relative link for a notification. Replies
// jump to the comment anchor; comments and reactions link to the article.
func ArticlePath(n Notification) string {
	slug := n.ArticleSlug
	if slug == "" {
		slug = n.Data.ArticleSlug
	}
	path := "/articles/" + slug

	if n.Type != NotificationReply {
		return path
	}

	commentID := n.Data.CommentID
	if commentID == 0 {
		commentID = n.Data.ParentID
	}
	if commentID == 0 {
		return path
	}
	return fmt.Sprintf("%s#comment-%d", path, commentID)
}

// IDSet is a set of notification identifiers.
type IDSet map[int64]struct{}

// NewIDSet builds a set from the given ids.
func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set contains nothing.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids in the set.
func (s IDSet) Len() int {
	return len(s)
}

// Clone returns an independent copy of the set.
func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
