package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/marinavibecoder/telegram-notification-bot/internal/domain"
)

// Log is an append-only record of notification deliveries, kept in an
// embedded SQLite database so /history can answer after restarts.
type Log struct{ db *sql.DB }

// Open opens (or creates) the delivery log at the given path, applies
// recommended PRAGMAs and runs migrations.
func Open(ctx context.Context, path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite is a single-writer engine; one connection is plenty here.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &Log{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record appends one delivery outcome. It satisfies scheduler.Recorder.
func (l *Log) Record(d domain.Delivery) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO deliveries (id, schedule, message, sent_at, ok, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Schedule, d.Message, d.SentAt.UTC().Unix(), boolToInt(d.OK), d.Error,
	)
	return err
}

// Recent returns up to n deliveries, newest first.
func (l *Log) Recent(n int) ([]domain.Delivery, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, schedule, message, sent_at, ok, error
		FROM deliveries
		ORDER BY sent_at DESC, id DESC
		LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Delivery
	for rows.Next() {
		var (
			d      domain.Delivery
			sentAt int64
			okInt  int
		)
		if err := rows.Scan(&d.ID, &d.Schedule, &d.Message, &sentAt, &okInt, &d.Error); err != nil {
			return nil, err
		}
		d.SentAt = time.Unix(sentAt, 0).UTC()
		d.OK = okInt != 0
		res = append(res, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
