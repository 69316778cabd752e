package saved

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dailydash/internal/accounts"
	"dailydash/internal/domain"
)

// RegisterRoutes mounts the bookmark API routes. All of them require a
// logged-in user.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/bookmarks", accounts.RequireUser(handleList(store)))
	r.Post("/api/bookmarks", accounts.RequireUser(handleAdd(store)))
	r.Delete("/api/bookmarks", accounts.RequireUser(handleRemove(store)))
	r.Post("/api/bookmarks/undo", accounts.RequireUser(handleUndo(store)))
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := accounts.CurrentUser(r.Context())
		articles, err := store.List(r.Context(), user.ID)
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

func handleAdd(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a domain.Article
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if a.Link == "" {
			http.Error(w, `{"error":"link is required"}`, http.StatusBadRequest)
			return
		}

		user := accounts.CurrentUser(r.Context())
		if err := store.Add(r.Context(), user.ID, a); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}

func handleRemove(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link := r.URL.Query().Get("link")
		if link == "" {
			http.Error(w, `{"error":"link is required"}`, http.StatusBadRequest)
			return
		}

		user := accounts.CurrentUser(r.Context())
		if err := store.Remove(r.Context(), user.ID, link); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}

func handleUndo(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := accounts.CurrentUser(r.Context())
		err := store.UndoLast(r.Context(), user.ID)
		w.Header().Set("Content-Type", "application/json")
		if errors.Is(err, ErrNothingToUndo) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"message": "Nothing to undo",
			})
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}
