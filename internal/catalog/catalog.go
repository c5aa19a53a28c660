// Package catalog keeps a content-addressed record of every uploaded
// object in a local SQLite database. Bytes whose SHA-256 is already in
// the catalog are not uploaded again; the recorded URL is reused.
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Record is one uploaded object.
type Record struct {
	ID          string
	ContentHash string
	StorageKey  string
	URL         string
	Name        string
	MimeType    string
	Size        int64
	BatchID     string
	CreatedAt   time.Time
}

// Catalog is what the publish pipeline needs from the upload history.
// A nil Catalog is valid and disables re-upload suppression.
type Catalog interface {
	// Lookup returns the record for a content hash, or ok=false.
	Lookup(ctx context.Context, contentHash string) (*Record, bool, error)

	// RecordAll persists one publish pass's uploads atomically.
	RecordAll(ctx context.Context, recs []*Record) error

	// Count returns the number of cataloged uploads.
	Count(ctx context.Context) (int64, error)
}

// HashBytes returns the catalog's content address for data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
