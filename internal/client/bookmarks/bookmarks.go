// Package bookmarks implements the optimistic bookmark toggle. The UI
// flips first, the server call follows, and a failure rolls the flip
// back so state and server never drift apart.
package bookmarks

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"dailydash/internal/client/gateway"
	"dailydash/internal/client/state"
	"dailydash/internal/domain"
)

// API is the slice of the gateway the manager needs.
type API interface {
	AddBookmark(ctx context.Context, a domain.Article) error
	RemoveBookmark(ctx context.Context, link string) error
	UndoLast(ctx context.Context) error
	Bookmarks(ctx context.Context) ([]domain.Article, error)
}

// View is the slice of the renderer the manager drives.
type View interface {
	// UpdateBookmarkIcon flips a single card's icon in place.
	UpdateBookmarkIcon(link string, bookmarked bool)
	// RefreshContent repaints the article grid from state, content
	// scope only.
	RefreshContent()
}

// Manager owns bookmark toggling and undo. Its methods run with the
// caller's lock held; network requests go through call, which releases
// that lock for the duration so a slow round trip cannot freeze input.
type Manager struct {
	st     *state.Store
	api    API
	view   View
	notify state.Notifier
	mu     sync.Locker
	log    *slog.Logger
}

// New wires a manager. locker is the caller's lock, already held on
// entry to every method; nil means the caller does no locking.
func New(st *state.Store, api API, view View, notify state.Notifier, locker sync.Locker, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{st: st, api: api, view: view, notify: notify, mu: locker, log: log}
}

// call runs one network request with the caller's lock released.
func (m *Manager) call(ctx context.Context, fn func(context.Context) error) error {
	if m.mu == nil {
		return fn(ctx)
	}
	m.mu.Unlock()
	defer m.mu.Lock()
	return fn(ctx)
}

// Toggle flips the bookmark for an article. The icon updates before the
// request is sent; on failure the whole optimistic change is reverted
// and the user is told the save failed.
func (m *Manager) Toggle(ctx context.Context, a domain.Article) {
	if m.st.IsBookmarked(a.Link) {
		m.remove(ctx, a)
	} else {
		m.add(ctx, a)
	}
}

func (m *Manager) add(ctx context.Context, a domain.Article) {
	m.st.AddBookmark(a.Link)
	m.view.UpdateBookmarkIcon(a.Link, true)

	err := m.call(ctx, func(ctx context.Context) error {
		return m.api.AddBookmark(ctx, a)
	})
	if err != nil {
		m.log.Warn("bookmark add failed, rolling back", "link", a.Link, "error", err)
		m.st.RemoveBookmark(a.Link)
		m.view.UpdateBookmarkIcon(a.Link, false)
		m.notify.Notify(state.Notification{Message: "Could not save article"})
		return
	}
	m.notify.Notify(state.Notification{Message: "Saved to Read Later", Undoable: true})
}

func (m *Manager) remove(ctx context.Context, a domain.Article) {
	// Capture the visible list so a failed request can restore the
	// card exactly where it was.
	prev := m.st.Articles

	m.st.RemoveBookmark(a.Link)
	m.view.UpdateBookmarkIcon(a.Link, false)
	onReadLater := m.st.Filter == domain.FilterReadLater
	if onReadLater {
		// The card disappears immediately; no refetch needed.
		m.st.RemoveArticle(a.Link)
		m.view.RefreshContent()
	}

	err := m.call(ctx, func(ctx context.Context) error {
		return m.api.RemoveBookmark(ctx, a.Link)
	})
	if err != nil {
		m.log.Warn("bookmark remove failed, rolling back", "link", a.Link, "error", err)
		m.st.AddBookmark(a.Link)
		// The filter may have changed while the lock was released;
		// only restore the captured list if Read Later is still up.
		if onReadLater && m.st.Filter == domain.FilterReadLater {
			m.st.SetArticles(prev)
			m.view.RefreshContent()
		} else {
			m.view.UpdateBookmarkIcon(a.Link, true)
		}
		m.notify.Notify(state.Notification{Message: "Could not remove article"})
		return
	}
	m.notify.Notify(state.Notification{Message: "Removed from Read Later", Undoable: true})
}

// Undo reverses the most recent bookmark change via the server's
// single undo slot, then resyncs the mirrored set and repaints.
func (m *Manager) Undo(ctx context.Context) {
	err := m.call(ctx, m.api.UndoLast)
	if errors.Is(err, gateway.ErrNothingToUndo) {
		m.notify.Notify(state.Notification{Message: "Nothing to undo"})
		return
	}
	if err != nil {
		m.log.Warn("undo failed", "error", err)
		m.notify.Notify(state.Notification{Message: "Undo failed"})
		return
	}

	var list []domain.Article
	err = m.call(ctx, func(ctx context.Context) error {
		var err error
		list, err = m.api.Bookmarks(ctx)
		return err
	})
	if err != nil {
		m.log.Warn("bookmark resync after undo failed", "error", err)
		m.notify.Notify(state.Notification{Message: "Action undone"})
		return
	}
	m.st.SetBookmarksFromArticles(list)
	if m.st.Filter == domain.FilterReadLater {
		m.st.SetArticles(list)
	}
	m.view.RefreshContent()
	m.notify.Notify(state.Notification{Message: "Action undone"})
}
