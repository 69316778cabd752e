// Package engine is the client controller. It owns the state store, the
// document, the reconciler and the gateway, and serializes all mutation
// behind one mutex. Network requests release the lock while in flight.
// Article fetches are tagged with a sequence number; a response that
// comes back after a newer request started is discarded, so a slow
// early response can never overwrite a fresh one.
package engine

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/samber/lo"

	"dailydash/internal/client/bookmarks"
	"dailydash/internal/client/debounce"
	"dailydash/internal/client/dom"
	"dailydash/internal/client/gateway"
	"dailydash/internal/client/localstore"
	"dailydash/internal/client/query"
	"dailydash/internal/client/render"
	"dailydash/internal/client/state"
	"dailydash/internal/domain"
)

// Scope labels how much of the page a render touched.
type Scope string

const (
	ScopeShell   Scope = "shell"
	ScopeContent Scope = "content"
)

// API is everything the engine needs from the gateway. *gateway.Client
// satisfies it; tests substitute fakes.
type API interface {
	Session(ctx context.Context) (*gateway.SessionInfo, error)
	Login(ctx context.Context, email, password string) (*gateway.AuthResult, error)
	Signup(ctx context.Context, name, email, password string) (*gateway.AuthResult, error)
	Logout(ctx context.Context) error
	SavePreferences(ctx context.Context, preferences []string) error
	Sources(ctx context.Context) ([]domain.Source, error)
	News(ctx context.Context, params url.Values) ([]domain.Article, error)
	bookmarks.API
}

// Options configures an engine.
type Options struct {
	API      API
	Notifier state.Notifier
	Logger   *slog.Logger
	// Local persists device settings (theme). Optional.
	Local *localstore.Store
	// Clock drives the search debounce window. Nil means real time.
	Clock debounce.Clock
	// Now feeds the rendered date line. Nil means time.Now.
	Now func() time.Time
	// OnRender is called after every render with the scope and the
	// serialized page. Called with the engine lock held; do not call
	// back into the engine from it.
	OnRender func(scope Scope, html string)
}

// Engine drives the whole client.
type Engine struct {
	mu  sync.Mutex
	ctx context.Context

	st  *state.Store
	doc *dom.Document
	rec *render.Reconciler
	api API
	deb *debounce.Debouncer
	bm  *bookmarks.Manager

	notify   state.Notifier
	log      *slog.Logger
	local    *localstore.Store
	onRender func(scope Scope, html string)

	draft      *state.PreferenceDraft
	sources    []domain.Source
	categories []string

	// fetchSeq increments on every article fetch; responses carrying an
	// older number are stale and dropped.
	fetchSeq uint64
}

// New assembles an engine. It renders nothing until Start.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	notify := opts.Notifier
	if notify == nil {
		notify = state.NotifyFunc(func(n state.Notification) {
			log.Info("notice", "message", n.Message)
		})
	}

	e := &Engine{
		st:         state.New(),
		doc:        dom.NewDocument(),
		api:        opts.API,
		notify:     notify,
		log:        log,
		local:      opts.Local,
		onRender:   opts.OnRender,
		categories: domain.DefaultCategories,
	}
	e.rec = render.New(e.doc, opts.Now)
	e.rec.SetCategories(e.categories)

	clock := opts.Clock
	if clock != nil {
		e.deb = debounce.NewWithClock(clock, debounce.DefaultDelay, e.onSearchSettled)
	} else {
		e.deb = debounce.New(debounce.DefaultDelay, e.onSearchSettled)
	}
	e.bm = bookmarks.New(e.st, opts.API, managerView{e}, notify, &e.mu, log)
	return e
}

// Document exposes the page tree for assertions and serialization.
func (e *Engine) Document() *dom.Document { return e.doc }

// State exposes the state store. Callers outside the engine must treat
// it as read-only.
func (e *Engine) State() *state.Store { return e.st }

// HTML serializes the current page.
func (e *Engine) HTML() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.HTML()
}

func (e *Engine) emit(scope Scope) {
	if e.onRender != nil {
		e.onRender(scope, e.doc.HTML())
	}
}

// Start loads device settings, discovers categories, probes the session
// and routes to the first screen.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	e.ctx = ctx
	if e.local != nil {
		if d, err := e.local.Load(); err != nil {
			e.log.Warn("loading local settings failed", "error", err)
		} else if d.Theme != "" {
			e.st.Theme = d.Theme
		}
	}
	e.mu.Unlock()

	if srcs, err := e.api.Sources(ctx); err != nil {
		e.log.Warn("source discovery failed, using defaults", "error", err)
	} else {
		e.mu.Lock()
		e.sources = srcs
		e.categories = lo.Uniq(lo.Map(srcs, func(s domain.Source, _ int) string {
			return s.Category
		}))
		if len(e.categories) == 0 {
			e.categories = domain.DefaultCategories
		}
		e.rec.SetCategories(e.categories)
		e.mu.Unlock()
	}

	var user *domain.User
	if sess, err := e.api.Session(ctx); err != nil {
		e.log.Warn("session probe failed", "error", err)
	} else if sess.Authenticated {
		user = sess.User
	}

	e.mu.Lock()
	enter := e.routeLocked(user)
	e.mu.Unlock()
	if enter {
		e.enterDashboard(ctx)
	}
}

// routeLocked switches to the screen for the given user and mounts it.
// Returns true when the caller should follow up with the dashboard data
// load. Lock must be held.
func (e *Engine) routeLocked(u *domain.User) bool {
	e.st.User = u
	e.st.View = NextView(u)

	switch e.st.View {
	case state.ViewUnauthenticated:
		e.rec.MountLogin(e.st)
	case state.ViewNeedsPreferences:
		e.draft = state.NewPreferenceDraft(nil)
		e.rec.MountPreferences(e.st, e.draft)
	case state.ViewAdminDashboard:
		e.rec.MountAdmin(e.st, e.sources)
	case state.ViewReaderDashboard:
		e.st.SetFilter(domain.FilterMyFeed)
		e.rec.Render(e.st, true)
		e.emit(ScopeShell)
		return true
	}
	e.emit(ScopeShell)
	return false
}

// enterDashboard mirrors the server-side bookmark set and loads the
// first article page. Called without the lock.
func (e *Engine) enterDashboard(ctx context.Context) {
	if list, err := e.api.Bookmarks(ctx); err != nil {
		e.log.Warn("bookmark mirror load failed", "error", err)
	} else {
		e.mu.Lock()
		e.st.SetBookmarksFromArticles(list)
		e.mu.Unlock()
	}
	e.refreshArticles(ctx)
}

// refreshArticles fetches the article list for the current filter and
// search, releasing the lock for the duration of the network call. The
// response only applies if no newer fetch started in the meantime.
func (e *Engine) refreshArticles(ctx context.Context) {
	e.mu.Lock()
	e.fetchSeq++
	seq := e.fetchSeq
	req := query.Build(e.st.Filter, e.st.Search, e.categories)
	e.mu.Unlock()

	var articles []domain.Article
	var err error
	if req.Bookmarks {
		articles, err = e.api.Bookmarks(ctx)
	} else {
		articles, err = e.api.News(ctx, req.Params)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if seq != e.fetchSeq {
		e.log.Debug("dropping stale article response", "seq", seq, "current", e.fetchSeq)
		return
	}
	if err != nil {
		e.log.Warn("article fetch failed", "error", err)
		e.notify.Notify(state.Notification{Message: "Could not load articles"})
		return
	}
	if req.Bookmarks {
		e.st.SetBookmarksFromArticles(articles)
	}
	e.st.SetArticles(articles)
	if e.st.View == state.ViewReaderDashboard {
		e.rec.Render(e.st, false)
		e.emit(ScopeContent)
	}
}

// Login attempts sign-in. A rejected credential pair stays on the login
// screen with the server's message.
func (e *Engine) Login(ctx context.Context, email, password string) {
	res, err := e.api.Login(ctx, email, password)

	e.mu.Lock()
	if err != nil {
		e.log.Warn("login request failed", "error", err)
		e.rec.SetAuthError("Something went wrong. Please try again.")
		e.emit(ScopeContent)
		e.mu.Unlock()
		return
	}
	if !res.Success {
		e.rec.SetAuthError(res.Message)
		e.emit(ScopeContent)
		e.mu.Unlock()
		return
	}
	enter := e.routeLocked(res.User)
	e.mu.Unlock()
	if enter {
		e.enterDashboard(ctx)
	}
}

// Signup registers a reader account. The account is not signed in:
// the login form comes back with a confirmation so the user can enter
// their new credentials.
func (e *Engine) Signup(ctx context.Context, name, email, password string) {
	res, err := e.api.Signup(ctx, name, email, password)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.log.Warn("signup request failed", "error", err)
		e.rec.SetAuthError("Something went wrong. Please try again.")
		e.emit(ScopeContent)
		return
	}
	if !res.Success {
		e.rec.SetAuthError(res.Message)
		e.emit(ScopeContent)
		return
	}
	e.st.User = nil
	e.st.View = state.ViewUnauthenticated
	e.rec.MountLogin(e.st)
	e.emit(ScopeShell)
	e.notify.Notify(state.Notification{Message: "Account created. Please log in."})
}

// Logout ends the session and returns to the login screen. Any
// in-flight article fetch is invalidated so it cannot repaint a page
// that no longer exists.
func (e *Engine) Logout(ctx context.Context) {
	if err := e.api.Logout(ctx); err != nil {
		e.log.Warn("logout request failed", "error", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.deb.Stop()
	e.fetchSeq++
	e.st.Reset()
	e.draft = nil
	e.rec.MountLogin(e.st)
	e.emit(ScopeShell)
}

// TogglePreference flips a category in the draft selection on the
// preference or settings screen.
func (e *Engine) TogglePreference(category string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return
	}
	e.draft.Toggle(category)
	e.rec.RefreshPreferenceOptions(e.draft)
	e.emit(ScopeContent)
}

// SavePreferences commits the draft and moves to the dashboard.
func (e *Engine) SavePreferences(ctx context.Context) {
	e.mu.Lock()
	if e.draft == nil {
		e.mu.Unlock()
		return
	}
	prefs := e.draft.Selected()
	e.mu.Unlock()

	if len(prefs) == 0 {
		e.notify.Notify(state.Notification{Message: "Pick at least one category"})
		return
	}
	if err := e.api.SavePreferences(ctx, prefs); err != nil {
		e.log.Warn("saving preferences failed", "error", err)
		e.notify.Notify(state.Notification{Message: "Could not save preferences"})
		return
	}

	e.mu.Lock()
	if e.st.User != nil {
		e.st.User.Preferences = prefs
	}
	fromSettings := e.st.View == state.ViewSettings
	e.st.View = state.ViewReaderDashboard
	if !fromSettings {
		e.st.SetFilter(domain.FilterMyFeed)
	}
	e.draft = nil
	e.rec.Render(e.st, true)
	e.emit(ScopeShell)
	e.mu.Unlock()

	e.enterDashboard(ctx)
}

// OpenSettings switches to the settings screen with a draft seeded from
// the saved preferences.
func (e *Engine) OpenSettings() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st.User == nil {
		return
	}
	e.deb.Stop()
	e.draft = state.NewPreferenceDraft(e.st.User.Preferences)
	e.st.View = state.ViewSettings
	e.rec.MountSettings(e.st, e.draft)
	e.emit(ScopeShell)
}

// CloseSettings abandons the draft and returns to the dashboard.
func (e *Engine) CloseSettings(ctx context.Context) {
	e.mu.Lock()
	e.draft = nil
	e.st.View = state.ViewReaderDashboard
	e.rec.Render(e.st, true)
	e.emit(ScopeShell)
	e.mu.Unlock()

	e.refreshArticles(ctx)
}

// SetFilter activates a sidebar filter. The pending search, debounced
// or already typed, is cleared with it.
func (e *Engine) SetFilter(ctx context.Context, f domain.Filter) {
	e.mu.Lock()
	e.deb.Stop()
	e.st.SetFilter(f)
	e.rec.ClearSearchInput()
	// Patch the highlight and title right away; the grid catches up
	// when the fetch lands.
	e.rec.Render(e.st, false)
	e.emit(ScopeContent)
	e.mu.Unlock()

	e.refreshArticles(ctx)
}

// SearchInput records a keystroke in the search box. The fetch fires
// only after typing pauses.
func (e *Engine) SearchInput(text string) {
	e.mu.Lock()
	e.st.Search = text
	e.doc.SetFocus("search-input")
	if input := e.doc.Find("search-input"); input != nil {
		input.SetAttr("value", text)
	}
	e.mu.Unlock()

	e.deb.Input(text)
}

// onSearchSettled runs when the debounce window elapses. A settled text
// that no longer matches the store was superseded by a filter click or
// further typing and is ignored.
func (e *Engine) onSearchSettled(text string) {
	e.mu.Lock()
	ctx := e.ctx
	current := e.st.View == state.ViewReaderDashboard && e.st.Search == text
	e.mu.Unlock()

	if !current {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	e.refreshArticles(ctx)
}

// ToggleBookmark flips the bookmark on a visible card.
func (e *Engine) ToggleBookmark(ctx context.Context, link string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var article *domain.Article
	for i := range e.st.Articles {
		if e.st.Articles[i].Link == link {
			article = &e.st.Articles[i]
			break
		}
	}
	if article == nil {
		e.log.Debug("bookmark toggle for unknown card", "link", link)
		return
	}
	e.bm.Toggle(ctx, *article)
}

// UndoBookmark reverses the most recent bookmark change.
func (e *Engine) UndoBookmark(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bm.Undo(ctx)
}

// ToggleTheme flips light/dark, persists it locally and repaints in
// place.
func (e *Engine) ToggleTheme() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.Theme == domain.ThemeDark {
		e.st.Theme = domain.ThemeLight
	} else {
		e.st.Theme = domain.ThemeDark
	}
	if e.local != nil {
		if err := e.local.Save(&localstore.Data{Theme: e.st.Theme}); err != nil {
			e.log.Warn("persisting theme failed", "error", err)
		}
	}
	e.rec.ApplyTheme(e.st)
	e.emit(ScopeContent)
}

// managerView adapts the reconciler for the bookmark manager. Its
// methods run with the engine lock already held.
type managerView struct{ e *Engine }

func (v managerView) UpdateBookmarkIcon(link string, bookmarked bool) {
	v.e.rec.UpdateBookmarkIcon(link, bookmarked)
	v.e.emit(ScopeContent)
}

func (v managerView) RefreshContent() {
	v.e.rec.Render(v.e.st, false)
	v.e.emit(ScopeContent)
}
