// Package sqlstore implements storage.Driver on top of database/sql. The
// sqlite and postgres drivers wrap it with their own connection setup.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/agentui/pkg/event"
	"github.com/papercomputeco/agentui/pkg/storage"
	"github.com/papercomputeco/agentui/pkg/transcript"
)

// Dialect captures the differences between SQL engines.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

const schema = `CREATE TABLE IF NOT EXISTS transcripts (
	id           TEXT PRIMARY KEY,
	message      TEXT NOT NULL,
	backend      TEXT NOT NULL,
	events       TEXT NOT NULL,
	direct       INTEGER NOT NULL,
	recovered    INTEGER NOT NULL,
	fallback     INTEGER NOT NULL,
	error        TEXT NOT NULL,
	cancelled    INTEGER NOT NULL,
	started_at   BIGINT NOT NULL,
	completed_at BIGINT NOT NULL
)`

const index = `CREATE INDEX IF NOT EXISTS transcripts_started_at ON transcripts (started_at DESC)`

const columns = `id, message, backend, events, direct, recovered, fallback, error, cancelled, started_at, completed_at`

// Store is a storage.Driver backed by a *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ storage.Driver = (*Store)(nil)

// New creates the schema if needed and returns a Store over db. The Store
// owns db and closes it on Close.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	for _, stmt := range []string{schema, index} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return &Store{db: db, dialect: dialect}, nil
}

// DB exposes the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Put(ctx context.Context, rec *transcript.Record) (bool, error) {
	if rec == nil {
		return false, transcript.ErrNilRecord
	}

	events, err := json.Marshal(rec.Events)
	if err != nil {
		return false, fmt.Errorf("encoding events: %w", err)
	}

	cancelled := 0
	if rec.Cancelled {
		cancelled = 1
	}

	res, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO transcripts (`+columns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING`),
		rec.ID, rec.Message, rec.Backend, string(events),
		rec.Tiers.Direct, rec.Tiers.Recovered, rec.Tiers.Fallback,
		rec.Error, cancelled,
		rec.StartedAt.UnixNano(), rec.CompletedAt.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("inserting transcript: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting transcript: %w", err)
	}
	return n > 0, nil
}

func (s *Store) Get(ctx context.Context, id string) (*transcript.Record, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+columns+` FROM transcripts WHERE id = ?`), id)

	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) Has(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT 1 FROM transcripts WHERE id = ?`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking transcript: %w", err)
	}
	return true, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*transcript.Record, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+columns+` FROM transcripts ORDER BY started_at DESC, id ASC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("listing transcripts: %w", err)
	}
	defer rows.Close()

	var result []*transcript.Record
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing transcripts: %w", err)
	}
	return result, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to the dialect's form.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*transcript.Record, error) {
	var (
		rec                  transcript.Record
		events               string
		cancelled            int64
		startedAt, completed int64
	)

	err := row.Scan(
		&rec.ID, &rec.Message, &rec.Backend, &events,
		&rec.Tiers.Direct, &rec.Tiers.Recovered, &rec.Tiers.Fallback,
		&rec.Error, &cancelled, &startedAt, &completed,
	)
	if err != nil {
		return nil, err
	}

	var decoded []event.Event
	if err := json.Unmarshal([]byte(events), &decoded); err != nil {
		return nil, fmt.Errorf("decoding events of %s: %w", rec.ID, err)
	}
	rec.Events = decoded
	rec.Cancelled = cancelled != 0
	rec.StartedAt = time.Unix(0, startedAt).UTC()
	rec.CompletedAt = time.Unix(0, completed).UTC()
	return &rec, nil
}
