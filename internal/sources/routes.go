package sources

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dailydash/internal/accounts"
	"dailydash/internal/domain"
)

// RegisterRoutes mounts the source management API routes. Listing is
// public (the client needs categories before login); mutations are
// admin only.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/sources", handleList(store))
	r.Post("/api/sources", accounts.RequireAdmin(handleCreate(store)))
	r.Delete("/api/sources", accounts.RequireAdmin(handleDelete(store)))
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []domain.Source{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

func handleCreate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var src domain.Source
		if err := json.NewDecoder(r.Body).Decode(&src); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if src.Name == "" || src.URL == "" || src.Category == "" {
			http.Error(w, `{"error":"name, url and category are required"}`, http.StatusBadRequest)
			return
		}

		created, err := store.Create(r.Context(), src)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func handleDelete(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			http.Error(w, `{"error":"id is required"}`, http.StatusBadRequest)
			return
		}
		if err := store.Delete(r.Context(), id); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}
