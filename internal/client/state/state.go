// Package state holds the client's single source of truth. Every render
// is a projection of this store; nothing user-visible lives anywhere
// else. Mutation happens through methods so invariants (search clearing
// on filter change, bookmark set mirroring) stay in one place.
package state

import (
	"github.com/samber/lo"

	"dailydash/internal/domain"
)

// View identifies which top-level screen is active.
type View string

const (
	ViewUnauthenticated  View = "unauthenticated"
	ViewNeedsPreferences View = "needs-preferences"
	ViewReaderDashboard  View = "reader-dashboard"
	ViewSettings         View = "settings"
	ViewAdminDashboard   View = "admin-dashboard"
)

// Store is the client-side application state.
type Store struct {
	User     *domain.User
	View     View
	Filter   domain.Filter
	Search   string
	Articles []domain.Article

	// bookmarks mirrors the server-side bookmark set by link, so
	// membership checks during card rendering are O(1).
	bookmarks map[string]bool

	Theme domain.Theme
}

// New returns a store in the initial, signed-out state.
func New() *Store {
	return &Store{
		View:      ViewUnauthenticated,
		Filter:    domain.FilterMyFeed,
		bookmarks: map[string]bool{},
		Theme:     domain.ThemeLight,
	}
}

// Reset returns the store to the signed-out state. Theme survives: it is
// a device preference, not an account one.
func (s *Store) Reset() {
	theme := s.Theme
	*s = *New()
	s.Theme = theme
}

// SetFilter activates a filter. Activating a filter always clears any
// pending search text.
func (s *Store) SetFilter(f domain.Filter) {
	s.Filter = f
	s.Search = ""
}

// SetArticles replaces the visible article list.
func (s *Store) SetArticles(articles []domain.Article) {
	s.Articles = articles
}

// RemoveArticle drops the article with the given link from the visible
// list, if present.
func (s *Store) RemoveArticle(link string) {
	s.Articles = lo.Reject(s.Articles, func(a domain.Article, _ int) bool {
		return a.Link == link
	})
}

// IsBookmarked reports membership in the mirrored bookmark set.
func (s *Store) IsBookmarked(link string) bool {
	return s.bookmarks[link]
}

// AddBookmark records a link in the mirrored bookmark set.
func (s *Store) AddBookmark(link string) {
	s.bookmarks[link] = true
}

// RemoveBookmark drops a link from the mirrored bookmark set.
func (s *Store) RemoveBookmark(link string) {
	delete(s.bookmarks, link)
}

// SetBookmarks replaces the mirrored bookmark set with the given links.
func (s *Store) SetBookmarks(links []string) {
	s.bookmarks = map[string]bool{}
	for _, l := range links {
		s.bookmarks[l] = true
	}
}

// SetBookmarksFromArticles replaces the mirrored bookmark set from a
// full bookmark listing.
func (s *Store) SetBookmarksFromArticles(articles []domain.Article) {
	s.SetBookmarks(lo.Map(articles, func(a domain.Article, _ int) string {
		return a.Link
	}))
}

// BookmarkCount returns the size of the mirrored bookmark set.
func (s *Store) BookmarkCount() int {
	return len(s.bookmarks)
}
