// Package reportlog is the batched, asynchronous game-transcript log writer
// (C3): it buffers completed GameReports and flushes them to the GameLogs
// table in background transactions, grounded on the teacher's
// internal/server/hand_history manager/monitor pair (buffer-then-flush,
// per-row retry, drop-after-repeated-failure).
package reportlog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	_ "modernc.org/sqlite"

	"github.com/lox/alphaself/internal/record"
)

// SerializerVersion is the wire version of the concatenated-updates log
// blob; the core pins this at 1 (spec.md §6).
const SerializerVersion = 1

// DefaultBatchSize is the default number of reports written per
// transaction; any batch size >= 1 is a legal configuration.
const DefaultBatchSize = 10_000

// DefaultFlushInterval bounds how long a partial batch can sit unflushed
// when the batch size alone would never be reached (e.g. a short
// interactive-game run), mirroring the teacher's hand-history manager's
// ticker-driven flush.
const DefaultFlushInterval = 10 * time.Second

const maxRowAttempts = 3

// Config configures a Writer. Clock defaults to quartz.NewReal(); tests can
// inject a quartz.NewMock(t) to control the periodic flush deterministically.
type Config struct {
	Path          string
	GameName      string
	BatchSize     int
	FlushInterval time.Duration
	Clock         quartz.Clock
}

// Writer batches GameReports and flushes them to SQLite on a fresh
// connection per flush.
type Writer struct {
	db        *sql.DB
	gameName  string
	batchSize int
	logger    *log.Logger

	clock quartz.Clock
	done  chan struct{}
	wg    sync.WaitGroup

	mu     sync.Mutex
	buffer []record.Report
}

// NewWriter opens (or shares, via an independent connection to the same
// file) the database at cfg.Path and returns a report log writer for
// cfg.GameName, with a background goroutine flushing on cfg.FlushInterval in
// addition to the batch-size trigger.
func NewWriter(cfg Config, logger *log.Logger) (*Writer, error) {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("reportlog: open %s: %w", cfg.Path, err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("reportlog: enable WAL: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS GameLogs (
			id integer PRIMARY KEY AUTOINCREMENT,
			GameName text NOT NULL,
			Log blob NOT NULL,
			LogSerializerVersion integer NOT NULL,
			WinningPlayerIndex integer NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("reportlog: bootstrap schema: %w", err)
	}

	w := &Writer{
		db:        db,
		gameName:  cfg.GameName,
		batchSize: cfg.BatchSize,
		logger:    logger,
		clock:     cfg.Clock,
		done:      make(chan struct{}),
	}
	w.wg.Add(1)
	go w.tick(cfg.FlushInterval)
	return w, nil
}

func (w *Writer) tick(interval time.Duration) {
	defer w.wg.Done()
	ticker := w.clock.NewTicker(interval, "reportlog-flush")
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := <-w.FlushAll(); err != nil {
				w.logger.Warn("reportlog: periodic flush failed", "error", err)
			}
		case <-w.done:
			return
		}
	}
}

// Close stops the periodic flush goroutine and releases the writer's
// connection pool. It does not flush; call FlushAll first.
func (w *Writer) Close() error {
	close(w.done)
	w.wg.Wait()
	return w.db.Close()
}

// Process implements the fan-out Sink interface (C4): it appends report to
// the pending buffer. This never blocks on I/O.
func (w *Writer) Process(r record.Report) error {
	w.Append(r)
	return nil
}

// Append enqueues report. If the buffer overflows the configured batch
// size, a background flush of exactly one batch is triggered automatically;
// the caller is not blocked on it.
func (w *Writer) Append(r record.Report) {
	w.mu.Lock()
	w.buffer = append(w.buffer, r)
	var batch []record.Report
	if len(w.buffer) > w.batchSize {
		batch = w.buffer[:w.batchSize]
		w.buffer = append([]record.Report(nil), w.buffer[w.batchSize:]...)
	}
	w.mu.Unlock()

	if batch != nil {
		go w.flushBatch(batch)
	}
}

// FlushAll pops and submits every pending report and returns a join handle
// the caller must wait on before the program exits.
func (w *Writer) FlushAll() <-chan error {
	w.mu.Lock()
	batch := w.buffer
	w.buffer = nil
	w.mu.Unlock()

	done := make(chan error, 1)
	if len(batch) == 0 {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		if err := w.writeBatch(batch); err != nil {
			done <- err
		}
	}()
	return done
}

func (w *Writer) flushBatch(batch []record.Report) {
	if err := w.writeBatch(batch); err != nil {
		w.logger.Warn("reportlog: batch flush failed", "error", err)
	}
}

func (w *Writer) writeBatch(batch []record.Report) error {
	ctx := context.Background()
	conn, err := w.db.Conn(ctx)
	if err != nil {
		w.logger.Warn("reportlog: flush worker could not open connection", "error", err)
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		w.logger.Warn("reportlog: flush worker could not begin transaction", "error", err)
		return err
	}

	for _, r := range batch {
		if err := writeRowWithRetry(ctx, tx, w.gameName, r, w.logger); err != nil {
			w.logger.Warn("reportlog: dropping report row after retries", "error", err)
		}
	}

	if err := tx.Commit(); err != nil {
		w.logger.Warn("reportlog: batch commit failed, batch dropped", "error", err)
		return err
	}
	return nil
}

func writeRowWithRetry(ctx context.Context, tx *sql.Tx, gameName string, r record.Report, logger *log.Logger) error {
	blob := SerializeReport(r)
	var lastErr error
	for attempt := 1; attempt <= maxRowAttempts; attempt++ {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO GameLogs (GameName, Log, LogSerializerVersion, WinningPlayerIndex) VALUES (?, ?, ?, ?)`,
			gameName, blob, SerializerVersion, r.Winner,
		)
		if err == nil {
			return nil
		}
		lastErr = err
		logger.Warn("reportlog: row write attempt failed", "attempt", attempt, "error", err)
	}
	return lastErr
}

// SerializeReport concatenates the serialized forms of every update in the
// report into a single opaque blob.
func SerializeReport(r record.Report) []byte {
	total := 0
	for _, u := range r.Updates {
		total += len(u.Serialized)
	}
	blob := make([]byte, 0, total)
	for _, u := range r.Updates {
		blob = append(blob, u.Serialized...)
	}
	return blob
}
