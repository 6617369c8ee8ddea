// Package inmemory provides a map-backed storage driver.
package inmemory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/papercomputeco/agentui/pkg/storage"
	"github.com/papercomputeco/agentui/pkg/transcript"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of records
	mu sync.RWMutex

	// records is the in memory map of records keyed by ID
	records map[string]*transcript.Record
}

var _ storage.Driver = (*Driver)(nil)

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		records: make(map[string]*transcript.Record),
	}
}

// Put stores a record. Returns false if the ID was already stored.
func (d *Driver) Put(_ context.Context, rec *transcript.Record) (bool, error) {
	if rec == nil {
		return false, transcript.ErrNilRecord
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.records[rec.ID]; ok {
		return false, nil
	}

	cp := *rec
	d.records[rec.ID] = &cp
	return true, nil
}

// Get retrieves a record by its ID.
func (d *Driver) Get(_ context.Context, id string) (*transcript.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.records[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	cp := *rec
	return &cp, nil
}

// Has checks if a record exists by its ID.
func (d *Driver) Has(_ context.Context, id string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.records[id]
	return ok, nil
}

// List returns up to limit records, newest first.
func (d *Driver) List(_ context.Context, limit int) ([]*transcript.Record, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	d.mu.RLock()
	result := make([]*transcript.Record, 0, len(d.records))
	for _, rec := range d.records {
		cp := *rec
		result = append(result, &cp)
	}
	d.mu.RUnlock()

	slices.SortFunc(result, func(a, b *transcript.Record) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
