// Package search exposes the read side of the full-text index.
package search

import (
	"context"
	"strings"

	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// ItemSearcher runs full-text queries over the search index.
type ItemSearcher interface {
	SearchItems(ctx context.Context, text, kind, source string, limit int) ([]*storage.SearchItem, error)
}

// Service answers search queries.
type Service struct {
	store ItemSearcher
}

// NewService creates a search service.
func NewService(store ItemSearcher) *Service {
	return &Service{store: store}
}

// Search runs a full-text query, optionally narrowed by kind and source.
// Blank or whitespace-only text short-circuits to an empty result without
// touching the store.
func (s *Service) Search(ctx context.Context, text, kind, source string, limit int) ([]*storage.SearchItem, error) {
	if strings.TrimSpace(text) == "" {
		return []*storage.SearchItem{}, nil
	}
	items, err := s.store.SearchItems(ctx, text, kind, source, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*storage.SearchItem{}
	}
	return items, nil
}
