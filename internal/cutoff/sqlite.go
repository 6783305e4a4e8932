package cutoff

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS cutoffs (
	game TEXT PRIMARY KEY,
	size INTEGER NOT NULL
)`

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the cutoffs table if it is missing.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, errors.Wrap(err, "sqlite: create cutoffs table")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, game string) (int, bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT size FROM cutoffs WHERE game = ?`, game).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "sqlite: select %s", game)
	}
	return n, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, game string, size int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cutoffs (game, size) VALUES (?, ?)
		 ON CONFLICT(game) DO UPDATE SET size = excluded.size`,
		game, size,
	)
	if err != nil {
		return errors.Wrapf(err, "sqlite: upsert %s", game)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
