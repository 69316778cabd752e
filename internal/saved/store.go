// Package saved manages per-user bookmarks ("Read Later") and the
// single-slot undo of the most recent bookmark mutation.
package saved

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dailydash/internal/db"
	"dailydash/internal/domain"
)

// ErrNothingToUndo is returned when no reversible action is recorded.
var ErrNothingToUndo = errors.New("nothing to undo")

// Action is a reversible bookmark mutation.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// Store manages persistence of bookmarks and the per-user undo slot.
type Store struct {
	db *db.DB
}

// NewStore creates a new saved store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// List returns the user's bookmarked articles, most recently saved first.
// Bookmarks whose article has since disappeared are skipped.
func (s *Store) List(ctx context.Context, userID int64) ([]domain.Article, error) {
	var out []domain.Article
	err := s.db.SelectContext(ctx, &out,
		`SELECT a.title, a.summary, a.link, a.date, a.source, a.category, a.image
		 FROM bookmarks b JOIN articles a ON a.link = b.link
		 WHERE b.user_id = ?
		 ORDER BY b.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	return out, nil
}

// Links returns just the bookmarked links for membership checks.
func (s *Store) Links(ctx context.Context, userID int64) ([]string, error) {
	var out []string
	err := s.db.SelectContext(ctx, &out,
		`SELECT link FROM bookmarks WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing bookmark links: %w", err)
	}
	return out, nil
}

// Add bookmarks an article for the user and records the action as
// undoable. The article is upserted so the bookmark survives feed churn.
func (s *Store) Add(ctx context.Context, userID int64, a domain.Article) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning add: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO articles (title, summary, link, date, source, category, image)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(link) DO NOTHING`,
		a.Title, a.Summary, a.Link, a.Date, a.Source, a.Category, a.Image)
	if err != nil {
		return fmt.Errorf("storing article: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bookmarks (user_id, link) VALUES (?, ?)
		 ON CONFLICT(user_id, link) DO NOTHING`, userID, a.Link)
	if err != nil {
		return fmt.Errorf("inserting bookmark: %w", err)
	}

	if err := recordAction(ctx, tx, userID, ActionAdd, a.Link); err != nil {
		return err
	}
	return tx.Commit()
}

// Remove deletes a bookmark and records the action as undoable.
func (s *Store) Remove(ctx context.Context, userID int64, link string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning remove: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE user_id = ? AND link = ?`, userID, link)
	if err != nil {
		return fmt.Errorf("deleting bookmark: %w", err)
	}

	if err := recordAction(ctx, tx, userID, ActionRemove, link); err != nil {
		return err
	}
	return tx.Commit()
}

// UndoLast reverses the most recent bookmark mutation and consumes the
// undo slot. Returns ErrNothingToUndo when the slot is empty.
func (s *Store) UndoLast(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning undo: %w", err)
	}
	defer tx.Rollback()

	var last struct {
		Action Action `db:"action"`
		Link   string `db:"link"`
	}
	err = tx.GetContext(ctx, &last,
		`SELECT action, link FROM last_actions WHERE user_id = ?`, userID)
	if err == sql.ErrNoRows {
		return ErrNothingToUndo
	}
	if err != nil {
		return fmt.Errorf("reading undo slot: %w", err)
	}

	switch last.Action {
	case ActionAdd:
		_, err = tx.ExecContext(ctx,
			`DELETE FROM bookmarks WHERE user_id = ? AND link = ?`, userID, last.Link)
	case ActionRemove:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO bookmarks (user_id, link) VALUES (?, ?)
			 ON CONFLICT(user_id, link) DO NOTHING`, userID, last.Link)
	default:
		err = fmt.Errorf("unknown action %q", last.Action)
	}
	if err != nil {
		return fmt.Errorf("reversing %s: %w", last.Action, err)
	}

	// One slot only: undo consumes it, it is not a stack.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM last_actions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clearing undo slot: %w", err)
	}
	return tx.Commit()
}

func recordAction(ctx context.Context, tx interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
}, userID int64, action Action, link string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO last_actions (user_id, action, link, created_at)
		 VALUES (?, ?, ?, datetime('now'))
		 ON CONFLICT(user_id) DO UPDATE SET
		   action = excluded.action,
		   link = excluded.link,
		   created_at = excluded.created_at`,
		userID, string(action), link)
	if err != nil {
		return fmt.Errorf("recording undo action: %w", err)
	}
	return nil
}
