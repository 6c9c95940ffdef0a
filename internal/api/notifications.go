package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nhle/notifeed/internal/model"
)

// FetchPage returns one page of the caller's notifications. A page below 1
// is treated as page 1.
func (c *Client) FetchPage(ctx context.Context, page, pageSize int) (*model.FeedPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = model.PageSize
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var result model.FeedPage
	if err := c.do(ctx, http.MethodGet, "/notifications/?"+q.Encode(), &result); err != nil {
		return nil, fmt.Errorf("fetching notifications page %d: %w", page, err)
	}
	return &result, nil
}

// UnreadCount returns the number of unread notifications across every page.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var result countResponse
	if err := c.do(ctx, http.MethodGet, "/notifications/count/", &result); err != nil {
		return 0, fmt.Errorf("fetching unread count: %w", err)
	}
	return result.UnreadCount, nil
}

// MarkRead marks one notification as read on the server.
func (c *Client) MarkRead(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/notifications/mark-read/%d/", id)
	if err := c.do(ctx, http.MethodPut, path, nil); err != nil {
		return fmt.Errorf("marking notification %d read: %w", id, err)
	}
	return nil
}

// Delete deletes one notification on the server.
func (c *Client) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/notifications/%d/", id)
	if err := c.do(ctx, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("deleting notification %d: %w", id, err)
	}
	return nil
}
