// Package domain holds the core DailyDash types shared by the server
// feature packages and the client engine.
package domain

import "strings"

// Role identifies a user's permission level.
type Role string

const (
	RoleReader Role = "reader"
	RoleAdmin  Role = "admin"
)

// MaxPreferences is the cap on stored preference categories per user.
const MaxPreferences = 5

// User is an authenticated account. Preferences is an ordered set of
// category names; nil/empty means the user has not picked any yet.
type User struct {
	ID          int64    `json:"id" db:"id"`
	Email       string   `json:"email" db:"email"`
	Name        string   `json:"name" db:"name"`
	Role        Role     `json:"role" db:"role"`
	Preferences []string `json:"preferences"`
}

// HasPreferences reports whether the user stored a preference set.
func (u *User) HasPreferences() bool {
	return u != nil && len(u.Preferences) > 0
}

// JoinPreferences flattens a preference list into its stored comma form.
func JoinPreferences(prefs []string) string {
	return strings.Join(prefs, ",")
}

// SplitPreferences parses the stored comma form back into a list.
// Empty input yields nil so "no preferences saved" stays distinguishable.
func SplitPreferences(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Article is a single news story. Link is the natural key across the
// whole system: bookmarking, dedup and undo all key on it.
type Article struct {
	Title    string `json:"title" db:"title"`
	Summary  string `json:"summary" db:"summary"`
	Link     string `json:"link" db:"link"`
	Date     string `json:"date" db:"date"`
	Source   string `json:"source" db:"source"`
	Category string `json:"category" db:"category"`
	Image    string `json:"image" db:"image"`
}

// Source is a configured feed source managed by admins.
type Source struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	URL      string `json:"url" db:"url"`
	Category string `json:"category" db:"category"`
}

// Filter is the single active view scope on the dashboard.
type Filter string

const (
	FilterMyFeed    Filter = "My Feed"
	FilterAll       Filter = "All"
	FilterReadLater Filter = "Read Later"
)

// DefaultCategories is the fallback sidebar category list used until the
// configured sources have been fetched.
var DefaultCategories = []string{"Politics", "Technology", "Sports"}

// Theme is the client-local appearance preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)
