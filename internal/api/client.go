package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/nhle/notifeed/internal/credential"
)

const (
	defaultTimeout = 30 * time.Second
	maxBackoff     = 30 * time.Second
)

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. https://api.example.com/api.
	BaseURL string

	// Credentials supplies the bearer token. It is consulted on every
	// request.
	Credentials credential.Provider

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
	Timeout    time.Duration

	// RateLimit is in requests per second. Zero or less disables limiting.
	RateLimit float64
	Burst     int

	// Language is sent as Accept-Language.
	Language string

	Logger logrus.FieldLogger
}

// Client is a thin HTTP client for the notification REST API.
// It handles Bearer token authentication, JSON decoding, outbound rate
// limiting, and retry with exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	creds      credential.Provider
	httpClient *http.Client
	limiter    *rate.Limiter
	language   string
	log        logrus.FieldLogger
	maxRetries int
}

// NewClient creates a new API client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	creds := cfg.Credentials
	if creds == nil {
		creds = credential.StaticToken("")
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		creds:      creds,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		language:   cfg.Language,
		log:        log,
		maxRetries: 3,
	}
}

// do builds the request, handles auth, rate limiting with exponential
// backoff, and JSON decoding of the response into result.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	result interface{},
) error {
	token, err := c.creds.Token()
	if err != nil || token == "" {
		if err == nil {
			return ErrNoCredential
		}
		return fmt.Errorf("%w: %w", ErrNoCredential, err)
	}

	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		requestID := uuid.New().String()
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if c.language != "" {
			req.Header.Set("Accept-Language", c.language)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		c.log.WithFields(logrus.Fields{
			"method":     method,
			"path":       path,
			"status":     resp.StatusCode,
			"request_id": requestID,
			"elapsed":    time.Since(start).String(),
		}).Debug("api request")

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf("rate limited (429) on %s %s", method, path)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized ||
			resp.StatusCode == http.StatusForbidden {
			return &AuthError{
				StatusCode: resp.StatusCode,
				Detail:     errorDetail(respBody),
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &StatusError{
				Method:     method,
				Path:       path,
				StatusCode: resp.StatusCode,
				Detail:     errorDetail(respBody),
			}
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent ||
			len(strings.TrimSpace(string(respBody))) == 0 {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
		}

		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// errorDetail extracts the "detail" message of an error body, if any.
func errorDetail(body []byte) string {
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil {
		return errResp.Detail
	}
	return ""
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}
