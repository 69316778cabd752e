package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailydash/internal/domain"
)

func TestCookieCarriedAcrossRequests(t *testing.T) {
	var sawCookie bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "dailydash_session", Value: "tok", Path: "/"})
		json.NewEncoder(w).Encode(AuthResult{Success: true, User: &domain.User{ID: 1}})
	})
	mux.HandleFunc("/api/session", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("dailydash_session"); err == nil && c.Value == "tok" {
			sawCookie = true
		}
		json.NewEncoder(w).Encode(SessionInfo{Authenticated: sawCookie})
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, nil)
	require.NoError(t, err)

	res, err := c.Login(context.Background(), "jo@example.com", "secret")
	require.NoError(t, err)
	require.True(t, res.Success)

	sess, err := c.Session(context.Background())
	require.NoError(t, err)
	assert.True(t, sawCookie)
	assert.True(t, sess.Authenticated)
}

func TestErrorBodyDecoded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"link is required"}`, http.StatusBadRequest)
	}))
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, nil)
	require.NoError(t, err)

	err = c.RemoveBookmark(context.Background(), "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "link is required", apiErr.Message)
}

func TestUndoConflictMapsToSentinel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Nothing to undo"})
	}))
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, nil)
	require.NoError(t, err)

	err = c.UndoLast(context.Background())
	assert.True(t, errors.Is(err, ErrNothingToUndo))
}

func TestNewsPassesQueryParams(t *testing.T) {
	var got url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		json.NewEncoder(w).Encode([]domain.Article{})
	}))
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, nil)
	require.NoError(t, err)

	params := url.Values{}
	params.Set("filter_type", "Category")
	params.Set("filter_value", "Technology")
	_, err = c.News(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, "Category", got.Get("filter_type"))
	assert.Equal(t, "Technology", got.Get("filter_value"))
}
