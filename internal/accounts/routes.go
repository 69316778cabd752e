package accounts

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dailydash/internal/domain"
)

// RegisterRoutes mounts the authentication and preferences API routes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/session", handleSession(store))
	r.Post("/api/login", handleLogin(store))
	r.Post("/api/signup", handleSignup(store))
	r.Post("/api/logout", handleLogout(store))
	r.Post("/api/preferences", RequireUser(handlePreferences(store)))
}

func handleSession(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sessionResponse{
			Authenticated: user != nil,
			User:          user,
		})
	}
}

func handleLogin(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		user, err := store.Authenticate(r.Context(), req.Email, req.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(authResponse{Success: false, Message: "Invalid credentials"})
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		token, err := store.CreateSession(r.Context(), user.ID)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(authResponse{Success: true, User: user})
	}
}

func handleSignup(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			http.Error(w, `{"error":"email and password are required"}`, http.StatusBadRequest)
			return
		}

		// Self-service signup always creates readers.
		user, err := store.CreateUser(r.Context(), req.Email, req.Password, req.Name, domain.RoleReader)
		if errors.Is(err, ErrEmailTaken) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(authResponse{Success: false, Message: "Email already exists"})
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		// No session is created; the new account logs in afterwards.
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(authResponse{Success: true, User: user})
	}
}

func handleLogout(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(SessionCookie); err == nil {
			// Best effort: the cookie is expired below either way.
			if err := store.DeleteSession(r.Context(), cookie.Value); err != nil {
				slog.Warn("deleting session failed", "error", err)
			}
		}
		http.SetCookie(w, &http.Cookie{
			Name:   SessionCookie,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}

func handlePreferences(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req preferencesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		user := CurrentUser(r.Context())
		if err := store.SavePreferences(r.Context(), user.ID, req.Preferences); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}
