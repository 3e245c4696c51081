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

// Store defines the interface for answer cache operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetAnswer retrieves a cached answer by key. Returns nil, nil when the
	// key is absent or the entry has expired.
	GetAnswer(ctx context.Context, key string) (*CachedAnswer, error)

	// SaveAnswer inserts or replaces a cached answer.
	SaveAnswer(ctx context.Context, answer *CachedAnswer) error

	// DeleteExpired removes entries whose expiry has passed and returns the
	// number of rows deleted.
	DeleteExpired(ctx context.Context) (int64, error)

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

// GetAnswer retrieves a cached answer by key.
func (s *sqlxStore) GetAnswer(ctx context.Context, key string) (*CachedAnswer, error) {
	if key == "" {
		return nil, fmt.Errorf("cache key must not be empty")
	}

	var answer CachedAnswer
	query := `SELECT key, question, answer, created_at, expires_at FROM answers WHERE key = ?`
	if err := s.db.GetContext(ctx, &answer, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query cached answer: %w", err)
	}

	if time.Now().After(answer.ExpiresAt) {
		s.logger.DebugContext(ctx, "Cached answer expired", "key", key, "expired_at", answer.ExpiresAt)
		return nil, nil
	}

	return &answer, nil
}

// SaveAnswer inserts or replaces a cached answer.
func (s *sqlxStore) SaveAnswer(ctx context.Context, answer *CachedAnswer) error {
	if answer == nil {
		return fmt.Errorf("cannot save nil answer")
	}
	if answer.Key == "" {
		return fmt.Errorf("cache key must not be empty")
	}

	query := `INSERT OR REPLACE INTO answers (key, question, answer, created_at, expires_at)
	          VALUES (:key, :question, :answer, :created_at, :expires_at)`
	if _, err := s.db.NamedExecContext(ctx, query, answer); err != nil {
		return fmt.Errorf("failed to save cached answer: %w", err)
	}

	s.logger.DebugContext(ctx, "Cached answer saved", "key", answer.Key, "expires_at", answer.ExpiresAt)
	return nil
}

// DeleteExpired removes entries whose expiry has passed.
func (s *sqlxStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM answers WHERE expires_at <= ?`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired answers: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}

	if deleted > 0 {
		s.logger.InfoContext(ctx, "Deleted expired cached answers", "count", deleted)
	}
	return deleted, nil
}

// RunSQLMaintenance performs database maintenance tasks like VACUUM.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Running SQL maintenance (VACUUM)...")
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("failed to run VACUUM: %w", err)
	}
	s.logger.InfoContext(ctx, "SQL maintenance completed.")
	return nil
}
