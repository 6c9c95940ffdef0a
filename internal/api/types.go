package api

// errorResponse is the error body returned by the REST framework.
type errorResponse struct {
	Detail string `json:"detail"`
}

// countResponse is the body of GET /notifications/count/.
type countResponse struct {
	UnreadCount int `json:"unread_count"`
}
