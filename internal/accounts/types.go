package accounts

import "dailydash/internal/domain"

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "dailydash_session"

// loginRequest is the body of POST /api/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signupRequest is the body of POST /api/signup.
type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is returned by login and signup. Message is only set on
// failure and carries the user-facing reason.
type authResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user,omitempty"`
}

// sessionResponse is returned by GET /api/session.
type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
}

// preferencesRequest is the body of POST /api/preferences.
type preferencesRequest struct {
	Preferences []string `json:"preferences"`
}
