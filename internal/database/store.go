package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations. It persists the two
// sets the notification core must not lose across restarts: the subscriber
// registry and the fired-alert ledger.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// AddSubscriber inserts a chat into the subscriber set. Inserting an
	// existing subscriber is a no-op.
	AddSubscriber(ctx context.Context, chatID int64) error

	// RemoveSubscriber deletes a chat from the subscriber set. Removing an
	// absent subscriber is a no-op.
	RemoveSubscriber(ctx context.Context, chatID int64) error

	// ListSubscribers returns every subscribed chat id.
	ListSubscribers(ctx context.Context) ([]int64, error)

	// AddFiredEvent records an alert event id as fired. Recording the same id
	// twice is a no-op.
	AddFiredEvent(ctx context.Context, eventID string) error

	// ListFiredEvents returns every recorded alert event id.
	ListFiredEvents(ctx context.Context) ([]string, error)

	// PruneFiredEvents deletes fired events recorded before the cutoff and
	// returns the number removed. Growth mitigation only; correctness does
	// not depend on it since event ids never recur.
	PruneFiredEvents(ctx context.Context, before time.Time) (int64, error)

	// SaveCheckpoint records the time of the last successful state flush.
	SaveCheckpoint(ctx context.Context, at time.Time) error

	// LastCheckpoint returns the time of the last state flush, or the zero
	// time if none has been recorded yet.
	LastCheckpoint(ctx context.Context) (time.Time, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) AddSubscriber(ctx context.Context, chatID int64) error {
	if chatID == 0 {
		return fmt.Errorf("subscriber chat id must be non-zero")
	}

	query := `INSERT INTO subscribers (chat_id, created_at) VALUES (?, ?)
	          ON CONFLICT(chat_id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, query, chatID, time.Now().UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert subscriber", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to insert subscriber %d: %w", chatID, err)
	}
	return nil
}

func (s *sqlxStore) RemoveSubscriber(ctx context.Context, chatID int64) error {
	query := `DELETE FROM subscribers WHERE chat_id = ?`
	if _, err := s.db.ExecContext(ctx, query, chatID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete subscriber", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to delete subscriber %d: %w", chatID, err)
	}
	return nil
}

func (s *sqlxStore) ListSubscribers(ctx context.Context) ([]int64, error) {
	var ids []int64
	query := `SELECT chat_id FROM subscribers ORDER BY chat_id`
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list subscribers", "error", err)
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return ids, nil
}

func (s *sqlxStore) AddFiredEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return fmt.Errorf("event id must be non-empty")
	}

	query := `INSERT INTO fired_events (event_id, created_at) VALUES (?, ?)
	          ON CONFLICT(event_id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, query, eventID, time.Now().UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert fired event", "event_id", eventID, "error", err)
		return fmt.Errorf("failed to insert fired event %q: %w", eventID, err)
	}
	return nil
}

func (s *sqlxStore) ListFiredEvents(ctx context.Context) ([]string, error) {
	var ids []string
	query := `SELECT event_id FROM fired_events ORDER BY event_id`
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list fired events", "error", err)
		return nil, fmt.Errorf("failed to list fired events: %w", err)
	}
	return ids, nil
}

func (s *sqlxStore) PruneFiredEvents(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM fired_events WHERE created_at < ?`
	res, err := s.db.ExecContext(ctx, query, before.UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to prune fired events", "before", before, "error", err)
		return 0, fmt.Errorf("failed to prune fired events: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned fired events: %w", err)
	}
	if removed > 0 {
		s.logger.InfoContext(ctx, "Pruned fired events", "removed", removed, "before", before)
	}
	return removed, nil
}

func (s *sqlxStore) SaveCheckpoint(ctx context.Context, at time.Time) error {
	query := `INSERT INTO checkpoints (id, saved_at) VALUES (1, ?)
	          ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at`
	if _, err := s.db.ExecContext(ctx, query, at.UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save checkpoint", "error", err)
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

func (s *sqlxStore) LastCheckpoint(ctx context.Context) (time.Time, error) {
	var at time.Time
	query := `SELECT saved_at FROM checkpoints WHERE id = 1`
	err := s.db.GetContext(ctx, &at, query)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read checkpoint", "error", err)
		return time.Time{}, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	return at, nil
}

// RunSQLMaintenance performs VACUUM and ANALYZE to keep the database compact.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	start := time.Now()
	s.logger.InfoContext(ctx, "Starting SQL maintenance")

	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		s.logger.ErrorContext(ctx, "Failed to run VACUUM", "error", err)
		return fmt.Errorf("failed to run VACUUM: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "ANALYZE"); err != nil {
		s.logger.ErrorContext(ctx, "Failed to run ANALYZE", "error", err)
		return fmt.Errorf("failed to run ANALYZE: %w", err)
	}

	s.logger.InfoContext(ctx, "SQL maintenance finished", "duration", time.Since(start))
	return nil
}
