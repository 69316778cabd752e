package engine

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailydash/internal/client/gateway"
	"dailydash/internal/client/state"
	"dailydash/internal/db"
	"dailydash/internal/domain"
	"dailydash/internal/server"
)

// setupServer boots the full API on an in-memory database and returns
// an engine wired to it through a real gateway client.
func setupServer(t *testing.T) (*Engine, *fakeClock) {
	t.Helper()

	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := server.New(server.Config{Port: 0}, database, log)
	require.NoError(t, srv.Seed(context.Background()))

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	gw, err := gateway.New(ts.URL, log)
	require.NoError(t, err)

	clock := &fakeClock{}
	eng := New(Options{API: gw, Logger: log, Clock: clock})
	return eng, clock
}

func gridLinks(eng *Engine) []string {
	grid := eng.Document().Find("article-grid")
	if grid == nil {
		return nil
	}
	var links []string
	for _, card := range grid.Children {
		if l := card.Attr("data-link"); l != "" {
			links = append(links, l)
		}
	}
	return links
}

func TestFullReaderJourney(t *testing.T) {
	eng, clock := setupServer(t)
	ctx := context.Background()

	// Fresh visitor lands on the login screen.
	eng.Start(ctx)
	require.Equal(t, state.ViewUnauthenticated, eng.State().View)

	// Signing up returns to the login form; no session yet.
	eng.Signup(ctx, "Jo", "jo@example.com", "secret")
	require.Equal(t, state.ViewUnauthenticated, eng.State().View)
	require.NotNil(t, eng.Document().Find("login-view"))

	// Logging in with the new credentials leads to the preference
	// picker.
	eng.Login(ctx, "jo@example.com", "secret")
	require.Equal(t, state.ViewNeedsPreferences, eng.State().View)
	require.NotNil(t, eng.Document().Find("prefs-view"))

	// Saving a category lands on My Feed, filtered to it.
	eng.TogglePreference("Technology")
	eng.SavePreferences(ctx)
	require.Equal(t, state.ViewReaderDashboard, eng.State().View)
	require.Equal(t, domain.FilterMyFeed, eng.State().Filter)
	links := gridLinks(eng)
	require.Len(t, links, 2)
	for _, a := range eng.State().Articles {
		assert.Equal(t, "Technology", a.Category)
	}

	// The All filter widens to every seeded article.
	eng.SetFilter(ctx, domain.FilterAll)
	assert.Len(t, gridLinks(eng), 6)

	// Search narrows after the debounce window.
	eng.SearchInput("marathon")
	clock.fire()
	require.Len(t, eng.State().Articles, 1)
	assert.Equal(t, `Results for "marathon"`, eng.Document().Find("feed-title").Text)

	// Bookmark the result, then visit Read Later.
	saved := eng.State().Articles[0].Link
	eng.ToggleBookmark(ctx, saved)
	require.True(t, eng.State().IsBookmarked(saved))

	eng.SetFilter(ctx, domain.FilterReadLater)
	require.Equal(t, []string{saved}, gridLinks(eng))

	// Removing it on Read Later empties the grid without a refetch.
	eng.ToggleBookmark(ctx, saved)
	assert.Empty(t, gridLinks(eng))
	assert.NotNil(t, eng.Document().Find("no-results"))

	// Undo brings it back.
	eng.UndoBookmark(ctx)
	require.Equal(t, []string{saved}, gridLinks(eng))
	assert.True(t, eng.State().IsBookmarked(saved))

	// A second undo finds the slot consumed.
	eng.UndoBookmark(ctx)
	require.Equal(t, []string{saved}, gridLinks(eng))

	// Logging out returns to the login screen.
	eng.Logout(ctx)
	assert.Equal(t, state.ViewUnauthenticated, eng.State().View)
	assert.NotNil(t, eng.Document().Find("login-view"))
}

func TestSeededAdminJourney(t *testing.T) {
	eng, _ := setupServer(t)
	ctx := context.Background()

	eng.Start(ctx)
	eng.Login(ctx, "admin@dailydash.com", "admin123")

	require.Equal(t, state.ViewAdminDashboard, eng.State().View)
	list := eng.Document().Find("source-list")
	require.NotNil(t, list)
	assert.Len(t, list.Children, 3)
}

func TestSessionSurvivesRestartedEngine(t *testing.T) {
	eng, _ := setupServer(t)
	ctx := context.Background()

	eng.Start(ctx)
	eng.Signup(ctx, "Jo", "jo@example.com", "secret")
	eng.Login(ctx, "jo@example.com", "secret")
	eng.TogglePreference("Sports")
	eng.SavePreferences(ctx)
	require.Equal(t, state.ViewReaderDashboard, eng.State().View)

	// The same gateway cookie jar resolves the session again.
	eng.Start(ctx)
	assert.Equal(t, state.ViewReaderDashboard, eng.State().View)
}
