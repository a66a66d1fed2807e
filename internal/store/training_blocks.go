package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

const trainingBlockColumns = `id, race_name, identifier, race_date, start_date, duration_weeks, created_at, updated_at`

// CreateTrainingBlock inserts a new block. ID and timestamps must be set.
func (db *DB) CreateTrainingBlock(ctx context.Context, b *TrainingBlock) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO training_blocks (`+trainingBlockColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID, b.RaceName, b.Identifier,
		b.RaceDate.Format(dateLayout), b.StartDate.Format(dateLayout), b.DurationWeeks,
		b.CreatedAt.UTC().Format(time.RFC3339), b.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetTrainingBlock retrieves a block by ID
func (db *DB) GetTrainingBlock(ctx context.Context, id string) (*TrainingBlock, error) {
	row := db.QueryRowContext(ctx, `SELECT `+trainingBlockColumns+` FROM training_blocks WHERE id = ?`, id)
	b, err := scanTrainingBlock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTrainingBlockNotFound
	}
	return b, err
}

// ListTrainingBlocks returns all blocks ordered by race date ascending
func (db *DB) ListTrainingBlocks(ctx context.Context) ([]TrainingBlock, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+trainingBlockColumns+`
		FROM training_blocks
		ORDER BY race_date ASC, created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []TrainingBlock
	for rows.Next() {
		b, err := scanTrainingBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *b)
	}
	return blocks, rows.Err()
}

// UpdateTrainingBlock overwrites every mutable field of an existing block.
func (db *DB) UpdateTrainingBlock(ctx context.Context, b *TrainingBlock) error {
	result, err := db.ExecContext(ctx, `
		UPDATE training_blocks
		SET race_name = ?, identifier = ?, race_date = ?, start_date = ?,
			duration_weeks = ?, updated_at = ?
		WHERE id = ?
	`,
		b.RaceName, b.Identifier, b.RaceDate.Format(dateLayout), b.StartDate.Format(dateLayout),
		b.DurationWeeks, b.UpdatedAt.UTC().Format(time.RFC3339), b.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(result, ErrTrainingBlockNotFound)
}

// DeleteTrainingBlock removes a block by ID
func (db *DB) DeleteTrainingBlock(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM training_blocks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, ErrTrainingBlockNotFound)
}

func requireRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

func scanTrainingBlock(s scanner) (*TrainingBlock, error) {
	var b TrainingBlock
	var raceDate, startDate, createdAt, updatedAt string
	err := s.Scan(&b.ID, &b.RaceName, &b.Identifier, &raceDate, &startDate, &b.DurationWeeks, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if b.RaceDate, err = time.Parse(dateLayout, raceDate); err != nil {
		return nil, fmt.Errorf("parsing race_date %q: %w", raceDate, err)
	}
	if b.StartDate, err = time.Parse(dateLayout, startDate); err != nil {
		return nil, fmt.Errorf("parsing start_date %q: %w", startDate, err)
	}
	if b.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	if b.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at %q: %w", updatedAt, err)
	}
	return &b, nil
}
