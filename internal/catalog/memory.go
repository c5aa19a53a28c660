package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MemoryCatalog is an in-memory Catalog used in tests.
type MemoryCatalog struct {
	byHash map[string]*Record
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{byHash: map[string]*Record{}}
}

func (c *MemoryCatalog) Lookup(_ context.Context, contentHash string) (*Record, bool, error) {
	rec, ok := c.byHash[contentHash]
	return rec, ok, nil
}

func (c *MemoryCatalog) RecordAll(_ context.Context, recs []*Record) error {
	for _, rec := range recs {
		if _, ok := c.byHash[rec.ContentHash]; ok {
			continue
		}
		cp := *rec
		if cp.ID == "" {
			cp.ID = uuid.NewString()
		}
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = time.Now()
		}
		c.byHash[cp.ContentHash] = &cp
	}
	return nil
}

func (c *MemoryCatalog) Count(context.Context) (int64, error) {
	return int64(len(c.byHash)), nil
}
