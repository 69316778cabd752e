package engine

import (
	"context"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailydash/internal/client/debounce"
	"dailydash/internal/client/gateway"
	"dailydash/internal/client/localstore"
	"dailydash/internal/client/state"
	"dailydash/internal/domain"
)

// fakeGateway is an in-memory stand-in for the API client.
type fakeGateway struct {
	mu sync.Mutex

	sessionUser  *domain.User
	sources      []domain.Source
	bookmarkList []domain.Article
	articles     []domain.Article

	// newsFn / addFn override the default behaviors when set.
	newsFn func(params url.Values) ([]domain.Article, error)
	addFn  func(a domain.Article) error

	newsParams []url.Values
	savedPrefs []string
	loggedOut  bool
}

func (f *fakeGateway) Session(ctx context.Context) (*gateway.SessionInfo, error) {
	return &gateway.SessionInfo{Authenticated: f.sessionUser != nil, User: f.sessionUser}, nil
}

func (f *fakeGateway) Login(ctx context.Context, email, password string) (*gateway.AuthResult, error) {
	if f.sessionUser != nil && f.sessionUser.Email == email {
		return &gateway.AuthResult{Success: true, User: f.sessionUser}, nil
	}
	return &gateway.AuthResult{Success: false, Message: "Invalid credentials"}, nil
}

func (f *fakeGateway) Signup(ctx context.Context, name, email, password string) (*gateway.AuthResult, error) {
	u := &domain.User{ID: 7, Email: email, Name: name, Role: domain.RoleReader}
	return &gateway.AuthResult{Success: true, User: u}, nil
}

func (f *fakeGateway) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = true
	return nil
}

func (f *fakeGateway) SavePreferences(ctx context.Context, preferences []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedPrefs = preferences
	return nil
}

func (f *fakeGateway) Sources(ctx context.Context) ([]domain.Source, error) {
	return f.sources, nil
}

func (f *fakeGateway) News(ctx context.Context, params url.Values) ([]domain.Article, error) {
	f.mu.Lock()
	f.newsParams = append(f.newsParams, params)
	fn := f.newsFn
	f.mu.Unlock()
	if fn != nil {
		return fn(params)
	}
	return f.articles, nil
}

func (f *fakeGateway) Bookmarks(ctx context.Context) ([]domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookmarkList, nil
}

func (f *fakeGateway) AddBookmark(ctx context.Context, a domain.Article) error {
	f.mu.Lock()
	fn := f.addFn
	f.mu.Unlock()
	if fn != nil {
		return fn(a)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookmarkList = append(f.bookmarkList, a)
	return nil
}

func (f *fakeGateway) RemoveBookmark(ctx context.Context, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.bookmarkList[:0]
	for _, a := range f.bookmarkList {
		if a.Link != link {
			out = append(out, a)
		}
	}
	f.bookmarkList = out
	return nil
}

func (f *fakeGateway) UndoLast(ctx context.Context) error {
	return gateway.ErrNothingToUndo
}

func (f *fakeGateway) lastNewsParams() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.newsParams) == 0 {
		return nil
	}
	return f.newsParams[len(f.newsParams)-1]
}

func (f *fakeGateway) newsCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.newsParams)
}

// fakeTimer / fakeClock drive the debounce window by hand.
type fakeTimer struct {
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return !t.fired
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) debounce.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) fire() {
	c.mu.Lock()
	pending := make([]*fakeTimer, len(c.timers))
	copy(pending, c.timers)
	c.mu.Unlock()
	for _, t := range pending {
		if !t.stopped && !t.fired {
			t.fired = true
			t.fn()
		}
	}
}

var testSources = []domain.Source{
	{ID: 1, Name: "NYT World", URL: "https://example.com/nyt", Category: "Politics"},
	{ID: 2, Name: "BBC Tech", URL: "https://example.com/bbc", Category: "Technology"},
	{ID: 3, Name: "ESPN Top", URL: "https://example.com/espn", Category: "Sports"},
}

func reader(prefs ...string) *domain.User {
	return &domain.User{ID: 1, Email: "jo@example.com", Name: "Jo", Role: domain.RoleReader, Preferences: prefs}
}

func newTestEngine(api *fakeGateway) (*Engine, *fakeClock) {
	clock := &fakeClock{}
	eng := New(Options{API: api, Clock: clock})
	return eng, clock
}

func TestNextView(t *testing.T) {
	cases := []struct {
		name string
		user *domain.User
		want state.View
	}{
		{"anonymous", nil, state.ViewUnauthenticated},
		{"admin", &domain.User{Role: domain.RoleAdmin}, state.ViewAdminDashboard},
		{"reader without preferences", reader(), state.ViewNeedsPreferences},
		{"reader with preferences", reader("Technology"), state.ViewReaderDashboard},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextView(tc.user))
		})
	}
}

func TestStartUnauthenticatedMountsLogin(t *testing.T) {
	eng, _ := newTestEngine(&fakeGateway{sources: testSources})
	eng.Start(context.Background())

	assert.Equal(t, state.ViewUnauthenticated, eng.State().View)
	assert.NotNil(t, eng.Document().Find("login-view"))
	assert.Nil(t, eng.Document().Find("dashboard-view"))
}

func TestStartAuthenticatedEntersDashboard(t *testing.T) {
	api := &fakeGateway{
		sessionUser: reader("Technology"),
		sources:     testSources,
		articles: []domain.Article{
			{Title: "New chip ships", Link: "https://example.com/tech/chip", Category: "Technology"},
		},
	}
	eng, _ := newTestEngine(api)

	var scopes []Scope
	eng.onRender = func(scope Scope, html string) { scopes = append(scopes, scope) }

	eng.Start(context.Background())

	st := eng.State()
	assert.Equal(t, state.ViewReaderDashboard, st.View)
	assert.Equal(t, domain.FilterMyFeed, st.Filter)
	require.Len(t, st.Articles, 1)

	doc := eng.Document()
	require.NotNil(t, doc.Find("dashboard-view"))
	assert.True(t, doc.Find("nav-my-feed").HasClass("active"))
	assert.NotNil(t, doc.Find("article-grid").FindByAttr("data-link", "https://example.com/tech/chip"))

	assert.Equal(t, "Preferences", api.lastNewsParams().Get("filter_type"))

	// Shell first, then the content patch with the fetched articles.
	require.NotEmpty(t, scopes)
	assert.Equal(t, ScopeShell, scopes[0])
	assert.Equal(t, ScopeContent, scopes[len(scopes)-1])
}

func TestLoginFailureShowsMessage(t *testing.T) {
	eng, _ := newTestEngine(&fakeGateway{sources: testSources})
	ctx := context.Background()
	eng.Start(ctx)

	eng.Login(ctx, "jo@example.com", "wrong")

	assert.Equal(t, state.ViewUnauthenticated, eng.State().View)
	assert.Equal(t, "Invalid credentials", eng.Document().Find("auth-error").Text)
}

func TestSignupReturnsToLogin(t *testing.T) {
	var notes []state.Notification
	eng := New(Options{
		API:      &fakeGateway{sources: testSources},
		Clock:    &fakeClock{},
		Notifier: state.NotifyFunc(func(n state.Notification) { notes = append(notes, n) }),
	})
	ctx := context.Background()
	eng.Start(ctx)

	eng.Signup(ctx, "Jo", "jo@example.com", "secret")

	// The new account is not signed in; the login form comes back.
	assert.Equal(t, state.ViewUnauthenticated, eng.State().View)
	assert.Nil(t, eng.State().User)
	assert.Nil(t, eng.Document().Find("prefs-view"))
	require.NotNil(t, eng.Document().Find("login-view"))
	require.NotEmpty(t, notes)
	assert.Contains(t, notes[len(notes)-1].Message, "Account created")
}

func TestSavePreferencesMovesToDashboard(t *testing.T) {
	api := &fakeGateway{sessionUser: reader(), sources: testSources}
	eng, _ := newTestEngine(api)
	ctx := context.Background()
	eng.Start(ctx)
	require.Equal(t, state.ViewNeedsPreferences, eng.State().View)

	eng.TogglePreference("Technology")
	eng.TogglePreference("Sports")
	eng.SavePreferences(ctx)

	assert.Equal(t, []string{"Technology", "Sports"}, api.savedPrefs)
	assert.Equal(t, state.ViewReaderDashboard, eng.State().View)
	assert.NotNil(t, eng.Document().Find("dashboard-view"))
}

func TestSavePreferencesRequiresSelection(t *testing.T) {
	api := &fakeGateway{sessionUser: reader(), sources: testSources}
	eng, _ := newTestEngine(api)
	ctx := context.Background()
	eng.Start(ctx)

	eng.SavePreferences(ctx)

	assert.Empty(t, api.savedPrefs)
	assert.Equal(t, state.ViewNeedsPreferences, eng.State().View)
}

func TestSearchDebounceCoalesces(t *testing.T) {
	api := &fakeGateway{sessionUser: reader("Technology"), sources: testSources}
	eng, clock := newTestEngine(api)
	ctx := context.Background()
	eng.Start(ctx)
	calls := api.newsCallCount()

	eng.SearchInput("c")
	eng.SearchInput("ch")
	eng.SearchInput("chip")
	assert.Equal(t, calls, api.newsCallCount())

	clock.fire()

	assert.Equal(t, calls+1, api.newsCallCount())
	assert.Equal(t, "chip", api.lastNewsParams().Get("search"))
	assert.Equal(t, `Results for "chip"`, eng.Document().Find("feed-title").Text)
}

func TestSetFilterClearsPendingSearch(t *testing.T) {
	api := &fakeGateway{sessionUser: reader("Technology"), sources: testSources}
	eng, clock := newTestEngine(api)
	ctx := context.Background()
	eng.Start(ctx)

	eng.SearchInput("chip")
	eng.SetFilter(ctx, domain.FilterAll)
	clock.fire()

	st := eng.State()
	assert.Empty(t, st.Search)
	assert.Equal(t, domain.FilterAll, st.Filter)
	last := api.lastNewsParams()
	assert.Equal(t, "All", last.Get("filter_type"))
	assert.Empty(t, last.Get("search"))
	assert.Equal(t, "All", eng.Document().Find("feed-title").Text)
}

func TestReadLaterUsesBookmarkListing(t *testing.T) {
	saved := domain.Article{Title: "Saved", Link: "https://example.com/saved"}
	api := &fakeGateway{
		sessionUser:  reader("Technology"),
		sources:      testSources,
		bookmarkList: []domain.Article{saved},
	}
	eng, _ := newTestEngine(api)
	ctx := context.Background()
	eng.Start(ctx)
	calls := api.newsCallCount()

	eng.SetFilter(ctx, domain.FilterReadLater)

	assert.Equal(t, calls, api.newsCallCount())
	require.Len(t, eng.State().Articles, 1)
	assert.Equal(t, saved.Link, eng.State().Articles[0].Link)
}

func TestToggleBookmarkOptimistic(t *testing.T) {
	chip := domain.Article{Title: "New chip ships", Link: "https://example.com/tech/chip"}
	api := &fakeGateway{
		sessionUser: reader("Technology"),
		sources:     testSources,
		articles:    []domain.Article{chip},
	}
	eng, _ := newTestEngine(api)
	ctx := context.Background()
	eng.Start(ctx)

	eng.ToggleBookmark(ctx, chip.Link)

	assert.True(t, eng.State().IsBookmarked(chip.Link))
	card := eng.Document().Find("article-grid").FindByAttr("data-link", chip.Link)
	require.NotNil(t, card)
	assert.NotNil(t, eng.Document().Root.FindByAttr("data-link", chip.Link))

	// Toggling a link that is not on screen is a no-op.
	eng.ToggleBookmark(ctx, "https://example.com/unknown")
	assert.False(t, eng.State().IsBookmarked("https://example.com/unknown"))
}

func TestBookmarkRequestDoesNotBlockInput(t *testing.T) {
	chip := domain.Article{Title: "New chip ships", Link: "https://example.com/tech/chip"}
	api := &fakeGateway{
		sessionUser: reader("Technology"),
		sources:     testSources,
		articles:    []domain.Article{chip},
	}
	entered := make(chan struct{})
	release := make(chan struct{})
	api.addFn = func(a domain.Article) error {
		close(entered)
		<-release
		return nil
	}
	eng, _ := newTestEngine(api)
	ctx := context.Background()
	eng.Start(ctx)

	done := make(chan struct{})
	go func() {
		eng.ToggleBookmark(ctx, chip.Link)
		close(done)
	}()
	<-entered

	// Other input still gets through while the save is in flight.
	html := make(chan string)
	go func() { html <- eng.HTML() }()
	select {
	case h := <-html:
		assert.Contains(t, h, "article-grid")
	case <-time.After(2 * time.Second):
		t.Fatal("engine blocked while a bookmark request was in flight")
	}

	close(release)
	<-done
	assert.True(t, eng.State().IsBookmarked(chip.Link))
}

func TestStaleResponseDiscarded(t *testing.T) {
	type newsCall struct {
		params url.Values
		reply  chan []domain.Article
	}
	calls := make(chan newsCall, 4)

	api := &fakeGateway{sessionUser: reader("Technology"), sources: testSources}
	api.newsFn = func(params url.Values) ([]domain.Article, error) {
		c := newsCall{params: params, reply: make(chan []domain.Article)}
		calls <- c
		return <-c.reply, nil
	}
	eng, _ := newTestEngine(api)

	started := make(chan struct{})
	go func() {
		eng.Start(context.Background())
		close(started)
	}()
	// Service the initial dashboard fetch.
	first := <-calls
	first.reply <- nil
	<-started

	allArticles := []domain.Article{{Title: "Old", Link: "https://example.com/old"}}
	techArticles := []domain.Article{{Title: "Fresh", Link: "https://example.com/fresh"}}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		eng.SetFilter(context.Background(), domain.FilterAll)
	}()
	slow := <-calls

	go func() {
		defer wg.Done()
		eng.SetFilter(context.Background(), domain.Filter("Technology"))
	}()
	fast := <-calls

	// The newer request resolves first; the older one lands late.
	fast.reply <- techArticles
	slow.reply <- allArticles
	wg.Wait()

	st := eng.State()
	require.Len(t, st.Articles, 1)
	assert.Equal(t, "https://example.com/fresh", st.Articles[0].Link)
	assert.Equal(t, "Technology", eng.Document().Find("feed-title").Text)
	assert.NotNil(t, eng.Document().Root.FindByAttr("data-link", "https://example.com/fresh"))
	assert.Nil(t, eng.Document().Root.FindByAttr("data-link", "https://example.com/old"))
}

func TestLogoutInvalidatesInFlightFetch(t *testing.T) {
	type newsCall struct {
		reply chan []domain.Article
	}
	calls := make(chan newsCall, 4)

	api := &fakeGateway{sessionUser: reader("Technology"), sources: testSources}
	api.newsFn = func(params url.Values) ([]domain.Article, error) {
		c := newsCall{reply: make(chan []domain.Article)}
		calls <- c
		return <-c.reply, nil
	}
	eng, _ := newTestEngine(api)

	started := make(chan struct{})
	go func() {
		eng.Start(context.Background())
		close(started)
	}()
	first := <-calls
	first.reply <- nil
	<-started

	done := make(chan struct{})
	go func() {
		eng.SetFilter(context.Background(), domain.FilterAll)
		close(done)
	}()
	inFlight := <-calls

	eng.Logout(context.Background())
	inFlight.reply <- []domain.Article{{Title: "Late", Link: "https://example.com/late"}}
	<-done

	assert.True(t, api.loggedOut)
	assert.Equal(t, state.ViewUnauthenticated, eng.State().View)
	assert.Empty(t, eng.State().Articles)
	assert.NotNil(t, eng.Document().Find("login-view"))
	assert.Nil(t, eng.Document().Root.FindByAttr("data-link", "https://example.com/late"))
}

func TestToggleThemePersists(t *testing.T) {
	local := localstore.New(filepath.Join(t.TempDir(), "local.json"))
	api := &fakeGateway{sources: testSources}

	eng := New(Options{API: api, Clock: &fakeClock{}, Local: local})
	eng.Start(context.Background())
	require.Equal(t, domain.ThemeLight, eng.State().Theme)

	eng.ToggleTheme()
	assert.Equal(t, domain.ThemeDark, eng.State().Theme)

	// A fresh engine picks the theme back up.
	again := New(Options{API: api, Clock: &fakeClock{}, Local: local})
	again.Start(context.Background())
	assert.Equal(t, domain.ThemeDark, again.State().Theme)
}

func TestOpenAndCloseSettings(t *testing.T) {
	api := &fakeGateway{sessionUser: reader("Technology"), sources: testSources}
	eng, _ := newTestEngine(api)
	ctx := context.Background()
	eng.Start(ctx)

	eng.OpenSettings()
	assert.Equal(t, state.ViewSettings, eng.State().View)
	assert.NotNil(t, eng.Document().Find("settings-view"))
	assert.Nil(t, eng.Document().Find("dashboard-view"))

	eng.CloseSettings(ctx)
	assert.Equal(t, state.ViewReaderDashboard, eng.State().View)
	assert.NotNil(t, eng.Document().Find("dashboard-view"))
}

func TestAdminRoutesToAdminDashboard(t *testing.T) {
	api := &fakeGateway{
		sessionUser: &domain.User{ID: 1, Email: "admin@dailydash.com", Role: domain.RoleAdmin},
		sources:     testSources,
	}
	eng, _ := newTestEngine(api)
	eng.Start(context.Background())

	assert.Equal(t, state.ViewAdminDashboard, eng.State().View)
	list := eng.Document().Find("source-list")
	require.NotNil(t, list)
	assert.Len(t, list.Children, len(testSources))
}
