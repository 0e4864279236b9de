package cache

import (
	"context"
	"errors"

	"github.com/tsawler/textmetrics/internal/store"
)

// Store keeps article text in the article_texts table.
type Store struct {
	s     *store.Store
	owned bool
}

// NewStore wraps s. When owned is true, Close also closes s.
func NewStore(s *store.Store, owned bool) *Store {
	return &Store{s: s, owned: owned}
}

func (c *Store) Get(ctx context.Context, id string) (string, error) {
	text, err := c.s.GetText(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrMiss
	}
	return text, err
}

// Put stores text without a url.
func (c *Store) Put(ctx context.Context, id, text string) error {
	return c.s.PutText(ctx, id, "", text)
}

// PutArticle stores text together with the url it came from.
func (c *Store) PutArticle(ctx context.Context, id, url, text string) error {
	return c.s.PutText(ctx, id, url, text)
}

func (c *Store) Close() error {
	if !c.owned {
		return nil
	}
	return c.s.Close()
}
