// Package render projects the state store onto the document tree.
//
// The dashboard renders at two scopes. A shell rebuild replaces the
// whole page scaffold (sidebar, header, empty grid) and is only done
// when entering the dashboard from a different screen. A content patch
// mutates just the pieces that change between fetches (title, date,
// active filter highlight, article grid) and leaves the scaffold and
// any focused input alone. Collapsing every update to a full rebuild
// would drop keyboard focus mid-search.
package render

import (
	"fmt"
	"strings"
	"time"

	"dailydash/internal/client/dom"
	"dailydash/internal/client/state"
	"dailydash/internal/domain"
)

const imageFallback = "this.onerror=null;this.src='https://via.placeholder.com/400x200?text=DailyDash'"

// Reconciler decides between shell rebuilds and content patches and
// applies them to the document.
type Reconciler struct {
	doc        *dom.Document
	categories []string
	now        func() time.Time
}

// New creates a reconciler over the document. now is injectable for
// tests; nil means time.Now.
func New(doc *dom.Document, now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{doc: doc, now: now}
}

// SetCategories supplies the source category list used for the sidebar
// filter buttons.
func (r *Reconciler) SetCategories(categories []string) {
	r.categories = categories
}

// Document returns the underlying document.
func (r *Reconciler) Document() *dom.Document { return r.doc }

// Render draws the dashboard. When rebuildShell is requested and the
// dashboard scaffold is not already mounted, the whole page is rebuilt;
// otherwise only content is patched. Returns whether the shell was
// rebuilt.
func (r *Reconciler) Render(st *state.Store, rebuildShell bool) bool {
	rebuilt := false
	if rebuildShell && !r.dashboardMounted() {
		r.buildShell(st)
		rebuilt = true
	}
	r.patchContent(st)
	return rebuilt
}

// dashboardMounted reports whether the dashboard scaffold is the page
// currently on screen.
func (r *Reconciler) dashboardMounted() bool {
	return r.doc.Find("dashboard-view") != nil
}

// filters returns the sidebar filter order: fixed entries wrap the
// configured categories.
func (r *Reconciler) filters() []domain.Filter {
	out := []domain.Filter{domain.FilterMyFeed, domain.FilterAll}
	for _, c := range r.categories {
		out = append(out, domain.Filter(c))
	}
	return append(out, domain.FilterReadLater)
}

func filterID(f domain.Filter) string {
	slug := strings.ToLower(strings.ReplaceAll(string(f), " ", "-"))
	return "nav-" + slug
}

// buildShell mounts a fresh dashboard scaffold. The grid starts empty;
// patchContent fills it.
func (r *Reconciler) buildShell(st *state.Store) {
	sidebar := dom.El("aside", "sidebar").Append(
		dom.El("div", "brand").SetText("DailyDash"),
	)
	nav := dom.El("nav", "filter-nav")
	for _, f := range r.filters() {
		btn := dom.El("button", filterID(f), "nav-btn").
			SetText(string(f)).
			SetAttr("data-filter", string(f))
		nav.Append(btn)
	}
	sidebar.Append(nav)

	header := dom.El("header", "dashboard-header").Append(
		dom.El("div", "feed-heading").Append(
			dom.El("h1", "feed-title"),
			dom.El("p", "feed-date"),
		),
		dom.El("input", "search-input").
			SetAttr("type", "search").
			SetAttr("placeholder", "Search articles..."),
		dom.El("div", "header-actions").Append(
			dom.El("button", "theme-btn").SetText(themeLabel(st.Theme)),
			dom.El("button", "settings-btn").SetText("Settings"),
			dom.El("button", "logout-btn").SetText("Log Out"),
		),
	)

	root := dom.El("div", "app").Append(
		dom.El("section", "dashboard-view").Append(
			sidebar,
			dom.El("main", "dashboard-main").Append(
				header,
				dom.El("section", "article-grid"),
			),
		),
	)
	r.doc.Mount(root)
}

// patchContent updates title, date, active filter highlight and the
// article grid in place. It never touches the search input.
func (r *Reconciler) patchContent(st *state.Store) {
	r.applyTheme(st)

	if title := r.doc.Find("feed-title"); title != nil {
		title.SetText(feedTitle(st))
	}
	if date := r.doc.Find("feed-date"); date != nil {
		date.SetText(r.now().Format("Monday, January 2, 2006"))
	}

	for _, f := range r.filters() {
		if btn := r.doc.Find(filterID(f)); btn != nil {
			btn.ToggleClass("active", f == st.Filter)
		}
	}

	grid := r.doc.Find("article-grid")
	if grid == nil {
		return
	}
	grid.RemoveChildren()
	if len(st.Articles) == 0 {
		grid.Append(dom.El("div", "no-results").
			SetText("No articles to show. Try a different filter or search."))
		return
	}
	for _, a := range st.Articles {
		grid.Append(r.card(a, st.IsBookmarked(a.Link)))
	}
}

// feedTitle picks the heading: an active search wins over the filter.
// The two fixed filters carry friendly headings; categories use their
// own name.
func feedTitle(st *state.Store) string {
	if st.Search != "" {
		return fmt.Sprintf("Results for %q", st.Search)
	}
	switch st.Filter {
	case domain.FilterMyFeed:
		return "Your Personal Feed"
	case domain.FilterReadLater:
		return "Saved Articles"
	}
	return string(st.Filter)
}

func (r *Reconciler) card(a domain.Article, bookmarked bool) *dom.Node {
	bookmark := dom.El("button", "", "bookmark-btn").
		SetAttr("data-link", a.Link)
	applyBookmarkIcon(bookmark, bookmarked)

	card := dom.El("article", "", "card").SetAttr("data-link", a.Link)
	if a.Image != "" {
		card.Append(dom.El("img", "", "card-image").
			SetAttr("src", a.Image).
			SetAttr("alt", a.Title).
			SetAttr("onerror", imageFallback))
	}
	card.Append(
		dom.El("h3", "", "card-title").SetText(a.Title),
		dom.El("p", "", "card-summary").SetText(a.Summary),
		dom.El("div", "", "card-meta").Append(
			dom.El("span", "", "card-category").SetText(a.Category),
			dom.El("span", "", "card-source").SetText(a.Source),
			dom.El("span", "", "card-date").SetText(a.Date),
		),
		dom.El("div", "", "card-actions").Append(
			dom.El("a", "", "card-link").
				SetAttr("href", a.Link).
				SetAttr("target", "_blank").
				SetText("Read more"),
			bookmark,
		),
	)
	return card
}

func applyBookmarkIcon(btn *dom.Node, bookmarked bool) {
	btn.ToggleClass("bookmarked", bookmarked)
	if bookmarked {
		btn.SetText("★")
	} else {
		btn.SetText("☆")
	}
}

// UpdateBookmarkIcon flips a single card's bookmark button in place,
// the cheapest possible patch for an optimistic toggle.
func (r *Reconciler) UpdateBookmarkIcon(link string, bookmarked bool) {
	grid := r.doc.Find("article-grid")
	if grid == nil {
		return
	}
	card := grid.FindByAttr("data-link", link)
	if card == nil {
		return
	}
	if btn := findBookmarkButton(card); btn != nil {
		applyBookmarkIcon(btn, bookmarked)
	}
}

func findBookmarkButton(n *dom.Node) *dom.Node {
	if n.HasClass("bookmark-btn") {
		return n
	}
	for _, c := range n.Children {
		if found := findBookmarkButton(c); found != nil {
			return found
		}
	}
	return nil
}

// ClearSearchInput blanks the search box. Used when a filter click
// clears the pending search; content patches never touch the input, so
// this is an explicit operation.
func (r *Reconciler) ClearSearchInput() {
	if input := r.doc.Find("search-input"); input != nil {
		input.SetAttr("value", "")
	}
}

// ApplyTheme repaints the theme class and toggle label without
// otherwise touching the page. Used when only the theme changed.
func (r *Reconciler) ApplyTheme(st *state.Store) {
	r.applyTheme(st)
}

// applyTheme toggles the dark-theme class on the page root and keeps
// the toggle button label current.
func (r *Reconciler) applyTheme(st *state.Store) {
	if root := r.doc.Find("app"); root != nil {
		root.ToggleClass("theme-dark", st.Theme == domain.ThemeDark)
	}
	if btn := r.doc.Find("theme-btn"); btn != nil {
		btn.SetText(themeLabel(st.Theme))
	}
}

func themeLabel(t domain.Theme) string {
	if t == domain.ThemeDark {
		return "Light Mode"
	}
	return "Dark Mode"
}
