// Package gateway is the client's only path to the server. Every
// request goes through one JSON wrapper so headers, error decoding and
// session cookies are handled uniformly.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"dailydash/internal/domain"
)

// ErrNothingToUndo is returned by UndoLast when the server reports an
// empty undo slot.
var ErrNothingToUndo = errors.New("nothing to undo")

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the DailyDash JSON API. The cookie jar carries the
// session across calls, like a browser would.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// New creates a client for the given API base URL.
func New(baseURL string, log *slog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		log: log,
	}, nil
}

// do performs one JSON request. body (when non-nil) is encoded as the
// request body; out (when non-nil) receives the decoded response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s response: %w", path, err)
		}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if payload.Error != "" {
			msg = payload.Error
		} else if payload.Message != "" {
			msg = payload.Message
		}
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// SessionInfo is the result of a session probe.
type SessionInfo struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
}

// AuthResult is the outcome of a login or signup attempt. Failure is a
// normal outcome, not an error.
type AuthResult struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user,omitempty"`
}

// Session asks the server who the current cookie belongs to.
func (c *Client) Session(ctx context.Context) (*SessionInfo, error) {
	var out SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/session", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login attempts to authenticate. On success the session cookie is
// stored in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new reader account. No session is created; the
// caller logs in with the new credentials afterwards.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var out AuthResult
	in := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/signup", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil, nil)
}

// SavePreferences persists the user's category preferences.
func (c *Client) SavePreferences(ctx context.Context, preferences []string) error {
	in := map[string][]string{"preferences": preferences}
	return c.do(ctx, http.MethodPost, "/api/preferences", nil, in, nil)
}

// Sources returns the configured news sources.
func (c *Client) Sources(ctx context.Context) ([]domain.Source, error) {
	var out []domain.Source
	if err := c.do(ctx, http.MethodGet, "/api/sources", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// News fetches articles with the given query parameters.
func (c *Client) News(ctx context.Context, params url.Values) ([]domain.Article, error) {
	var out []domain.Article
	if err := c.do(ctx, http.MethodGet, "/api/news", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Bookmarks returns the user's saved articles, most recent first.
func (c *Client) Bookmarks(ctx context.Context) ([]domain.Article, error) {
	var out []domain.Article
	if err := c.do(ctx, http.MethodGet, "/api/bookmarks", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddBookmark saves an article to Read Later.
func (c *Client) AddBookmark(ctx context.Context, a domain.Article) error {
	return c.do(ctx, http.MethodPost, "/api/bookmarks", nil, a, nil)
}

// RemoveBookmark deletes a saved article by link.
func (c *Client) RemoveBookmark(ctx context.Context, link string) error {
	q := url.Values{"link": []string{link}}
	return c.do(ctx, http.MethodDelete, "/api/bookmarks", q, nil, nil)
}

// UndoLast reverses the most recent bookmark change. Returns
// ErrNothingToUndo when the slot is empty.
func (c *Client) UndoLast(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/bookmarks/undo", nil, nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		return ErrNothingToUndo
	}
	return err
}
