// Package storage persists transcript records.
package storage

import (
	"context"

	"github.com/papercomputeco/agentui/pkg/transcript"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Driver defines the interface for persisting and retrieving transcript
// records in a storage backend.
type Driver interface {
	// Put stores a record. Returns true if the record was newly inserted,
	// false if a record with the same ID already exists, in which case Put
	// is a no-op.
	Put(ctx context.Context, rec *transcript.Record) (bool, error)

	// Get retrieves a record by its ID.
	Get(ctx context.Context, id string) (*transcript.Record, error)

	// Has checks if a record exists by its ID.
	Has(ctx context.Context, id string) (bool, error)

	// List returns up to limit records, most recently started first.
	List(ctx context.Context, limit int) ([]*transcript.Record, error)

	// Close closes the store and releases any resources.
	Close() error
}
