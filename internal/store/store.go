// Package store is the durable records DAL (C1): a synchronous point-read
// path and a batched, retried, asynchronous increment path, backed by
// SQLite. It owns its own connection(s) to a database file keyed by a
// game-name namespace, per spec.md §4.1 / §6.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/lox/alphaself/internal/record"
)

const maxTaskAttempts = 3

// Store is the records store: a GameStateRecords table namespaced by
// GameName, addressed by StateHash (the serialized game state).
type Store struct {
	db       *sql.DB
	gameName string
	logger   *log.Logger
}

// Open opens (creating if absent) the SQLite database at path and bootstraps
// the GameStateRecords and GameLogs tables. Schema bootstrapping itself is
// not part of the core contract (spec.md §1); this is the minimal migration
// needed to have a runnable store.
func Open(path, gameName string, logger *log.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy_timeout: %w", err)
	}
	if err := bootstrapSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, gameName: gameName, logger: logger}, nil
}

func bootstrapSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS GameStateRecords (
			GameName text NOT NULL,
			StateHash blob NOT NULL,
			DrawsCount integer NOT NULL DEFAULT 0,
			LossesCount integer NOT NULL DEFAULT 0,
			WinsCount integer NOT NULL DEFAULT 0,
			PRIMARY KEY (GameName, StateHash)
		)`,
		`CREATE TABLE IF NOT EXISTS GameLogs (
			id integer PRIMARY KEY AUTOINCREMENT,
			GameName text NOT NULL,
			Log blob NOT NULL,
			LogSerializerVersion integer NOT NULL,
			WinningPlayerIndex integer NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: bootstrap schema: %w", err)
		}
	}
	return nil
}

// Close releases the store's connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get performs a synchronous point read. A nil record with a nil error means
// no row exists for key; callers treat that as all-zero counters.
func (s *Store) Get(ctx context.Context, key []byte) (*record.StateRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT DrawsCount, LossesCount, WinsCount FROM GameStateRecords WHERE GameName = ? AND StateHash = ?`,
		s.gameName, key,
	)
	var r record.StateRecord
	if err := row.Scan(&r.Draws, &r.Losses, &r.Wins); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get: %w", err)
	}
	return &r, nil
}

// IncrementAsync spawns a worker on a fresh connection that applies every
// task in a single transaction, additive on conflict. It returns
// immediately; the returned channel is the join handle callers wait on at
// shutdown and is closed (after optionally receiving one error) once the
// worker has finished. A task is retried up to maxTaskAttempts times before
// being dropped with a logged warning; a commit failure drops the whole
// batch with a logged warning. Either way the store guarantees no
// corruption, never guarantees no loss (spec.md §7).
func (s *Store) IncrementAsync(tasks []record.IncrementTask) <-chan error {
	done := make(chan error, 1)
	if len(tasks) == 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)

		ctx := context.Background()
		conn, err := s.db.Conn(ctx)
		if err != nil {
			s.logger.Warn("store: increment worker could not open connection", "error", err)
			done <- err
			return
		}
		defer conn.Close()

		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			s.logger.Warn("store: increment worker could not begin transaction", "error", err)
			done <- err
			return
		}

		for _, task := range tasks {
			if err := applyTaskWithRetry(ctx, tx, s.gameName, task, s.logger); err != nil {
				s.logger.Warn("store: dropping increment task after retries", "error", err)
			}
		}

		if err := tx.Commit(); err != nil {
			s.logger.Warn("store: increment batch commit failed, batch dropped", "error", err)
			done <- err
			return
		}
	}()

	return done
}

func applyTaskWithRetry(ctx context.Context, tx *sql.Tx, gameName string, task record.IncrementTask, logger *log.Logger) error {
	var lastErr error
	for attempt := 1; attempt <= maxTaskAttempts; attempt++ {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO GameStateRecords (GameName, StateHash, DrawsCount, LossesCount, WinsCount)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (GameName, StateHash) DO UPDATE SET
				DrawsCount = DrawsCount + excluded.DrawsCount,
				LossesCount = LossesCount + excluded.LossesCount,
				WinsCount = WinsCount + excluded.WinsCount
		`, gameName, task.Serialized, task.Draws, task.Losses, task.Wins)
		if err == nil {
			return nil
		}
		lastErr = err
		logger.Warn("store: increment task attempt failed", "attempt", attempt, "error", err)
	}
	return lastErr
}
