// Package query translates the active filter and search text into the
// article request the gateway should make.
package query

import (
	"net/url"

	"github.com/samber/lo"

	"dailydash/internal/domain"
)

// Request describes one article fetch.
type Request struct {
	// Bookmarks selects the saved-article listing instead of the news
	// feed. Search never applies to it.
	Bookmarks bool
	// Params are the /api/news query parameters.
	Params url.Values
}

// Build maps a filter plus search text onto a request. categories is
// the configured source category list; a filter naming an unknown
// category degrades to the unfiltered feed rather than erroring.
func Build(filter domain.Filter, search string, categories []string) Request {
	if filter == domain.FilterReadLater {
		return Request{Bookmarks: true}
	}

	params := url.Values{}
	switch {
	case filter == domain.FilterMyFeed:
		params.Set("filter_type", "Preferences")
	case filter == domain.FilterAll:
		params.Set("filter_type", "All")
	case lo.Contains(categories, string(filter)):
		params.Set("filter_type", "Category")
		params.Set("filter_value", string(filter))
	default:
		params.Set("filter_type", "All")
	}

	if search != "" {
		params.Set("search", search)
	}
	return Request{Params: params}
}
