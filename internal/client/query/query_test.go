package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dailydash/internal/domain"
)

var categories = []string{"Politics", "Technology", "Sports"}

func TestBuildMyFeed(t *testing.T) {
	req := Build(domain.FilterMyFeed, "", categories)

	assert.False(t, req.Bookmarks)
	assert.Equal(t, "Preferences", req.Params.Get("filter_type"))
	assert.Empty(t, req.Params.Get("filter_value"))
	assert.Empty(t, req.Params.Get("search"))
}

func TestBuildAll(t *testing.T) {
	req := Build(domain.FilterAll, "", categories)

	assert.Equal(t, "All", req.Params.Get("filter_type"))
}

func TestBuildCategory(t *testing.T) {
	req := Build(domain.Filter("Technology"), "", categories)

	assert.Equal(t, "Category", req.Params.Get("filter_type"))
	assert.Equal(t, "Technology", req.Params.Get("filter_value"))
}

func TestBuildUnknownCategoryDegradesToAll(t *testing.T) {
	req := Build(domain.Filter("Gardening"), "", categories)

	assert.Equal(t, "All", req.Params.Get("filter_type"))
	assert.Empty(t, req.Params.Get("filter_value"))
}

func TestBuildSearchAttached(t *testing.T) {
	req := Build(domain.FilterMyFeed, "chips", categories)

	assert.Equal(t, "Preferences", req.Params.Get("filter_type"))
	assert.Equal(t, "chips", req.Params.Get("search"))
}

func TestBuildReadLater(t *testing.T) {
	req := Build(domain.FilterReadLater, "", categories)

	assert.True(t, req.Bookmarks)
	assert.Empty(t, req.Params)
}

func TestBuildReadLaterIgnoresSearch(t *testing.T) {
	req := Build(domain.FilterReadLater, "chips", categories)

	assert.True(t, req.Bookmarks)
	assert.Empty(t, req.Params.Get("search"))
}
