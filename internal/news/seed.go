package news

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dailydash/internal/domain"
)

// Live RSS ingestion is out of scope; articles enter the store through
// seed fixtures (or future import tooling) instead.

//go:embed seed_articles.yml
var defaultFixture []byte

type fixture struct {
	Articles []domain.Article `yaml:"articles"`
}

// SeedFromFile loads articles from a YAML fixture file and upserts them.
// Returns the number of articles loaded.
func (s *Store) SeedFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	return s.seed(ctx, data)
}

// SeedDefaults loads the embedded sample articles when the store is empty.
func (s *Store) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	return s.seed(ctx, defaultFixture)
}

func (s *Store) seed(ctx context.Context, data []byte) (int, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("parsing fixture: %w", err)
	}

	loaded := 0
	for _, a := range f.Articles {
		if a.Link == "" || a.Title == "" {
			continue
		}
		if err := s.Upsert(ctx, a); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}
