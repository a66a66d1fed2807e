package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// ErrActivityNotFound is returned when an activity doesn't exist
var ErrActivityNotFound = errors.New("activity not found")

// ErrTrainingBlockNotFound is returned when a training block doesn't exist
var ErrTrainingBlockNotFound = errors.New("training block not found")

// DB wraps the SQLite connection pool
type DB struct{ *sql.DB }

// Open opens the SQLite database at path, creating it if necessary, and
// brings the schema up to date.
func Open(path string) (*DB, error) {
	// SQLite won't create parent directories
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(8000)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{sqlDB}
	if err := db.Migrate(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// Migrate applies any pending embedded migrations.
func (db *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db.DB, "migrations")
}

// Truncate deletes every activity and the stored tokens. Training blocks are
// kept. It returns the number of rows removed from each table.
func (db *DB) Truncate(ctx context.Context) (activities, tokens int64, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM activities`)
	if err != nil {
		return 0, 0, fmt.Errorf("deleting activities: %w", err)
	}
	activities, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM auth`)
	if err != nil {
		return 0, 0, fmt.Errorf("deleting tokens: %w", err)
	}
	tokens, _ = res.RowsAffected()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sync_state`); err != nil {
		return 0, 0, fmt.Errorf("deleting sync state: %w", err)
	}

	return activities, tokens, tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
