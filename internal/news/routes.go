package news

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dailydash/internal/accounts"
	"dailydash/internal/domain"
)

// RegisterRoutes mounts the article listing route.
//
// Query parameters:
//
//	filter_type:  All | Category | Preferences
//	filter_value: category name (with filter_type=Category)
//	search:       free-text constraint on title/summary
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/news", handleList(store))
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ListFilter{Search: r.URL.Query().Get("search")}

		switch r.URL.Query().Get("filter_type") {
		case "Category":
			filter.Category = r.URL.Query().Get("filter_value")
		case "Preferences":
			// An anonymous request or an empty preference set degrades
			// to the unfiltered listing.
			if user := accounts.CurrentUser(r.Context()); user.HasPreferences() {
				filter.Categories = user.Preferences
			}
		}

		articles, err := store.List(r.Context(), filter)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if articles == nil {
			articles = []domain.Article{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(articles)
	}
}
