package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const activityColumns = `id, name, type, sport_type, start_date, start_date_local, timezone,
	distance, moving_time, elapsed_time, total_elevation_gain, average_speed,
	average_heartrate, calories, kudos_count, comment_count,
	trainer, commute, manual, private, created_at, updated_at`

// UpsertActivity inserts or updates an activity keyed by its Strava id.
// The insert and update branches write the same columns.
func (db *DB) UpsertActivity(ctx context.Context, a *Activity) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, `
		INSERT INTO activities (`+activityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			sport_type = excluded.sport_type,
			start_date = excluded.start_date,
			start_date_local = excluded.start_date_local,
			timezone = excluded.timezone,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			total_elevation_gain = excluded.total_elevation_gain,
			average_speed = excluded.average_speed,
			average_heartrate = excluded.average_heartrate,
			calories = excluded.calories,
			kudos_count = excluded.kudos_count,
			comment_count = excluded.comment_count,
			trainer = excluded.trainer,
			commute = excluded.commute,
			manual = excluded.manual,
			private = excluded.private,
			updated_at = excluded.updated_at
	`,
		a.ID, nullString(a.Name), a.Type, a.SportType,
		a.StartDate.UTC().Format(time.RFC3339), a.StartDateLocal.Format(time.RFC3339), a.Timezone,
		a.Distance, a.MovingTime, a.ElapsedTime, a.TotalElevationGain, a.AverageSpeed,
		a.AverageHeartrate, a.Calories, a.KudosCount, a.CommentCount,
		boolToInt(a.Trainer), boolToInt(a.Commute), boolToInt(a.Manual), boolToInt(a.Private),
		now, now,
	)
	return err
}

// GetActivity retrieves an activity by ID
func (db *DB) GetActivity(ctx context.Context, id int64) (*Activity, error) {
	row := db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	return a, err
}

// ListActivities returns activities ordered by start date descending
func (db *DB) ListActivities(ctx context.Context, f ActivityFilter) ([]Activity, error) {
	var (
		where []string
		args  []any
	)
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}

	query := `SELECT ` + activityColumns + ` FROM activities`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_date DESC"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

// CountActivities returns the total number of activities
func (db *DB) CountActivities(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&count)
	return count, err
}

// UpdateActivityName renames a stored activity.
// Returns ErrActivityNotFound when no row matches.
func (db *DB) UpdateActivityName(ctx context.Context, id int64, name string) error {
	result, err := db.ExecContext(ctx, `
		UPDATE activities
		SET name = ?, updated_at = ?
		WHERE id = ?
	`, name, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	return requireRow(result, ErrActivityNotFound)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(s scanner) (*Activity, error) {
	var a Activity
	var name sql.NullString
	var startDate, startDateLocal, createdAt, updatedAt string
	var trainer, commute, manual, private int

	err := s.Scan(
		&a.ID, &name, &a.Type, &a.SportType, &startDate, &startDateLocal, &a.Timezone,
		&a.Distance, &a.MovingTime, &a.ElapsedTime, &a.TotalElevationGain, &a.AverageSpeed,
		&a.AverageHeartrate, &a.Calories, &a.KudosCount, &a.CommentCount,
		&trainer, &commute, &manual, &private, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Name = name.String
	if a.StartDate, err = time.Parse(time.RFC3339, startDate); err != nil {
		return nil, fmt.Errorf("parsing start_date %q: %w", startDate, err)
	}
	if a.StartDateLocal, err = time.Parse(time.RFC3339, startDateLocal); err != nil {
		return nil, fmt.Errorf("parsing start_date_local %q: %w", startDateLocal, err)
	}
	if a.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	if a.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at %q: %w", updatedAt, err)
	}
	a.Trainer = trainer == 1
	a.Commute = commute == 1
	a.Manual = manual == 1
	a.Private = private == 1

	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
