package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const createUsersTable = `CREATE TABLE IF NOT EXISTS users (
	user_id INTEGER PRIMARY KEY
)`

// SQLiteRepository implements UserRepository with a single-column SQLite table.
type SQLiteRepository struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// NewSQLiteRepository opens the database file at path, creating it and the
// users table on first run.
func NewSQLiteRepository(path string, logger logrus.FieldLogger) (*SQLiteRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db at %s: %w", path, err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logger.WithError(err).Warn("Failed to enable SQLite WAL mode, keeping the default journal")
	}

	if _, err := db.Exec(createUsersTable); err != nil {
		_ = db.Close()
		logger.WithError(err).Error("Failed to create users table")
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}
	logger.Info("SQLite opened successfully at path: ", path)

	return &SQLiteRepository{
		db:  db,
		log: logger.WithField("component", "repository"),
	}, nil
}

// Close closes the database handle.
func (r *SQLiteRepository) Close() error {
	r.log.Info("Closing SQLite...")
	if err := r.db.Close(); err != nil {
		r.log.WithError(err).Error("Error closing SQLite")
		return err
	}
	return nil
}

// Register inserts userID unless it already exists.
func (r *SQLiteRepository) Register(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO users (user_id) VALUES (?)`, userID)
	if err != nil {
		r.log.WithError(err).WithField("user_id", userID).Error("Failed to register user in SQLite")
		return fmt.Errorf("failed to register user %d: %w", userID, err)
	}
	return nil
}

// ListAll returns every stored user ID.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ids, nil
}

// Count returns the number of stored users.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
