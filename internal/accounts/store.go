package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"dailydash/internal/db"
	"dailydash/internal/domain"
)

// ErrInvalidCredentials is returned when email/password do not match a user.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned when signup hits an existing email.
var ErrEmailTaken = errors.New("email already exists")

// Store manages persistence of users and sessions.
type Store struct {
	db *db.DB
}

// NewStore creates a new accounts store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

type userRow struct {
	ID          int64  `db:"id"`
	Email       string `db:"email"`
	Password    string `db:"password"`
	Name        string `db:"name"`
	Role        string `db:"role"`
	Preferences string `db:"preferences"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:          r.ID,
		Email:       r.Email,
		Name:        r.Name,
		Role:        domain.Role(r.Role),
		Preferences: domain.SplitPreferences(r.Preferences),
	}
}

// CreateUser inserts a new account with the given role.
func (s *Store) CreateUser(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, password, name, role) VALUES (?, ?, ?, ?)`,
		email, password, name, string(role),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}
	return &domain.User{ID: id, Email: email, Name: name, Role: role}, nil
}

// Authenticate looks up a user by email and password.
// Passwords are stored in the clear; hashing is out of scope here.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, email, password, name, role, preferences FROM users WHERE email = ? AND password = ?`,
		email, password,
	)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return row.toDomain(), nil
}

// GetByID retrieves a user by id. Returns nil, nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, email, password, name, role, preferences FROM users WHERE id = ?`, id,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return row.toDomain(), nil
}

// SavePreferences replaces the user's stored preference set.
func (s *Store) SavePreferences(ctx context.Context, userID int64, prefs []string) error {
	if len(prefs) > domain.MaxPreferences {
		prefs = prefs[:domain.MaxPreferences]
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET preferences = ? WHERE id = ?`,
		domain.JoinPreferences(prefs), userID,
	)
	if err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}

// CreateSession issues a new session token for the user.
func (s *Store) CreateSession(ctx context.Context, userID int64) (string, error) {
	token := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id) VALUES (?, ?)`, token, userID,
	)
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return token, nil
}

// UserForSession resolves a session token to its user.
// Returns nil, nil for unknown tokens.
func (s *Store) UserForSession(ctx context.Context, token string) (*domain.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		`SELECT u.id, u.email, u.password, u.name, u.role, u.preferences
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token = ?`, token,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving session: %w", err)
	}
	return row.toDomain(), nil
}

// DeleteSession revokes a session token. Unknown tokens are a no-op.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// SeedAdmin creates the default admin account if no user has it yet,
// for a fresh install.
func (s *Store) SeedAdmin(ctx context.Context) error {
	var count int
	if err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM users WHERE email = ?`, "admin@dailydash.com"); err != nil {
		return fmt.Errorf("checking admin: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err := s.CreateUser(ctx, "admin@dailydash.com", "admin123", "System Admin", domain.RoleAdmin)
	return err
}
