// Package sources manages the configured feed sources.
package sources

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"dailydash/internal/db"
	"dailydash/internal/domain"
)

// Store manages persistence of feed sources.
type Store struct {
	db *db.DB
}

// NewStore creates a new sources store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// List returns all configured sources.
func (s *Store) List(ctx context.Context) ([]domain.Source, error) {
	var out []domain.Source
	if err := s.db.SelectContext(ctx, &out,
		`SELECT id, name, url, category FROM sources ORDER BY id`); err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	return out, nil
}

// Categories returns the distinct category names across all sources,
// preserving source order.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Uniq(lo.Map(list, func(src domain.Source, _ int) string {
		return src.Category
	})), nil
}

// Create adds a new source.
func (s *Store) Create(ctx context.Context, src domain.Source) (*domain.Source, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sources (name, url, category) VALUES (?, ?, ?)`,
		src.Name, src.URL, src.Category,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting source: %w", err)
	}
	src.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading source id: %w", err)
	}
	return &src, nil
}

// Delete removes a source by id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("source not found: %d", id)
	}
	return nil
}

// defaultSources is the starter source set for a fresh install.
var defaultSources = []domain.Source{
	{Name: "NYT World", URL: "https://rss.nytimes.com/services/xml/rss/nyt/World.xml", Category: "Politics"},
	{Name: "BBC Tech", URL: "http://feeds.bbci.co.uk/news/technology/rss.xml", Category: "Technology"},
	{Name: "ESPN Top", URL: "https://www.espn.com/espn/rss/news", Category: "Sports"},
}

// SeedDefaults inserts the default sources when the table is empty.
func (s *Store) SeedDefaults(ctx context.Context) error {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sources`); err != nil {
		return fmt.Errorf("counting sources: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, src := range defaultSources {
		if _, err := s.Create(ctx, src); err != nil {
			return err
		}
	}
	return nil
}
