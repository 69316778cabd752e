// Package news stores articles and serves the filtered article listing.
package news

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"dailydash/internal/db"
	"dailydash/internal/domain"
)

// Store manages persistence of articles.
type Store struct {
	db *db.DB
}

// NewStore creates a new news store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// ListFilter narrows the article listing. Zero values mean "no constraint".
type ListFilter struct {
	// Category restricts to a single category (case-insensitive).
	Category string
	// Categories restricts to any of the given categories (preference set).
	Categories []string
	// Search matches title or summary substrings.
	Search string
}

const articleColumns = "title, summary, link, date, source, category, image"

// List returns articles matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]domain.Article, error) {
	builder := sq.Select(articleColumns).From("articles")

	if filter.Category != "" {
		builder = builder.Where(sq.Expr("LOWER(category) = LOWER(?)", filter.Category))
	}
	if len(filter.Categories) > 0 {
		builder = builder.Where(sq.Eq{"category": filter.Categories})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.Like{"title": pattern},
			sq.Like{"summary": pattern},
		})
	}

	query, args, err := builder.OrderBy("id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building article query: %w", err)
	}

	var out []domain.Article
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	return out, nil
}

// Upsert inserts an article, replacing any existing row with the same link.
func (s *Store) Upsert(ctx context.Context, a domain.Article) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (title, summary, link, date, source, category, image)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(link) DO UPDATE SET
		   title = excluded.title,
		   summary = excluded.summary,
		   date = excluded.date,
		   source = excluded.source,
		   category = excluded.category,
		   image = excluded.image`,
		a.Title, a.Summary, a.Link, a.Date, a.Source, a.Category, a.Image,
	)
	if err != nil {
		return fmt.Errorf("upserting article: %w", err)
	}
	return nil
}

// Count returns the number of stored articles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM articles`)
	return count, err
}
