package source

import (
	"context"
	"slices"
	"sync"

	"github.com/olimci/guffipedia/pkg/words"
)

// Cached remembers the first successful fetch of its inner fetcher until
// Reset is called. Failed fetches are not cached.
type Cached struct {
	inner Fetcher

	mu   sync.Mutex
	rows []words.Row
	ok   bool
}

func NewCached(inner Fetcher) *Cached {
	return &Cached{inner: inner}
}

func (c *Cached) Fetch(ctx context.Context) ([]words.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ok {
		return slices.Clone(c.rows), nil
	}

	rows, err := c.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.rows, c.ok = rows, true
	return slices.Clone(rows), nil
}

// Reset drops the cached rows so the next Fetch goes to the source.
func (c *Cached) Reset() {
	c.mu.Lock()
	c.rows, c.ok = nil, false
	c.mu.Unlock()
}
