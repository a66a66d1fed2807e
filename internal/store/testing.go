package store

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

// OpenInMemory opens a migrated in-memory database.
// This is only intended for use in tests.
func OpenInMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	goose.SetLogger(goose.NopLogger())
	db := &DB{sqlDB}
	if err := db.Migrate(context.Background()); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}
