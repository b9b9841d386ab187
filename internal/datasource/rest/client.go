// Package rest implements the datasource contract against the booking
// backend's JSON API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/rs/zerolog"
)

// Observer receives one callback per backend round trip.
type Observer interface {
	ObserveBackendCall(resource, method string, status int, elapsed time.Duration)
}

type Client struct {
	baseURL        string
	http           *http.Client
	retries        int
	retryDelay     time.Duration
	onUnauthorized func(ctx context.Context)
	observer       Observer
	log            zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetries sets the attempt count for the retried catalog reads.
func WithRetries(n int, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		c.retryDelay = delay
	}
}

// WithUnauthorizedHandler registers the hook run on every 401 response.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api",
		http:       &http.Client{Timeout: 10 * time.Second},
		retries:    3,
		retryDelay: 300 * time.Millisecond,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Tours() datasource.TourService          { return tours{c} }
func (c *Client) Bookings() datasource.BookingService    { return bookings{c} }
func (c *Client) Categories() datasource.CategoryService { return categories{c} }
func (c *Client) Users() datasource.UserService          { return users{c} }
func (c *Client) Reviews() datasource.ReviewService      { return reviews{c} }
func (c *Client) Auth() datasource.AuthService           { return auth{c} }

var _ datasource.DataSource = (*Client)(nil)

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do performs one JSON request. out may be nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := datasource.TokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(path, method, 0, start)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %v", datasource.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()
	c.observe(path, method, resp.StatusCode, start)

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := datasource.NewAPIError(resp.StatusCode, readMessage(resp.Body))
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("backend error")
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body errorBody
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}

func (c *Client) observe(path, method string, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendCall(resourceOf(path), method, status, time.Since(start))
}

// resourceOf keeps metric labels bounded: "/tours/12" -> "tours".
func resourceOf(path string) string {
	p := strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(p, "/?"); i >= 0 {
		p = p[:i]
	}
	return p
}

// withRetry retries transport and 5xx failures with a linear backoff.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	attempts := max(c.retries, 1)
	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, datasource.ErrTransport) && !errors.Is(lastErr, datasource.ErrServer) {
			return lastErr
		}
		c.log.Warn().Err(lastErr).Int("attempt", i+1).Msg("backend call failed")
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * c.retryDelay):
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
