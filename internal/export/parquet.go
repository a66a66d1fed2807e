// Package export writes stored activities as a Parquet file for analysis in
// DuckDB, pandas and similar tools.
package export

import (
	"context"
	"fmt"
	"os"
	"time"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"runlog/internal/analysis"
	"runlog/internal/store"
)

// Source lists stored activities
type Source interface {
	ListActivities(ctx context.Context, f store.ActivityFilter) ([]store.Activity, error)
}

type activityRow struct {
	ID                 int64    `parquet:"name=id, type=INT64"`
	Name               string   `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Type               string   `parquet:"name=type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SportType          string   `parquet:"name=sport_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	StartDateUTC       string   `parquet:"name=start_date_utc, type=BYTE_ARRAY, convertedtype=UTF8"`
	StartDateLocal     string   `parquet:"name=start_date_local, type=BYTE_ARRAY, convertedtype=UTF8"`
	DistanceKm         float64  `parquet:"name=distance_km, type=DOUBLE"`
	DistanceMi         float64  `parquet:"name=distance_mi, type=DOUBLE"`
	MovingTimeS        int64    `parquet:"name=moving_time_s, type=INT64"`
	ElapsedTimeS       int64    `parquet:"name=elapsed_time_s, type=INT64"`
	ElevationGainM     float64  `parquet:"name=elevation_gain_m, type=DOUBLE"`
	AverageSpeedMPS    float64  `parquet:"name=average_speed_mps, type=DOUBLE"`
	AverageHeartrate   *float64 `parquet:"name=average_heartrate_bpm, type=DOUBLE, repetitiontype=OPTIONAL"`
	Calories           *float64 `parquet:"name=calories, type=DOUBLE, repetitiontype=OPTIONAL"`
}

func newRow(a store.Activity) activityRow {
	return activityRow{
		ID:                 a.ID,
		Name:               a.Name,
		Type:               a.Type,
		SportType:          a.SportType,
		StartDateUTC:       a.StartDate.UTC().Format(time.RFC3339),
		StartDateLocal:     a.StartDateLocal.Format("2006-01-02T15:04:05"),
		DistanceKm:         a.Distance,
		DistanceMi:         analysis.KmToMi(a.Distance),
		MovingTimeS:        int64(a.MovingTime),
		ElapsedTimeS:       int64(a.ElapsedTime),
		ElevationGainM:     a.TotalElevationGain,
		AverageSpeedMPS:    a.AverageSpeed,
		AverageHeartrate:   a.AverageHeartrate,
		Calories:           a.Calories,
	}
}

// Activities encodes every stored activity, newest first, as Snappy
// compressed Parquet.
func Activities(ctx context.Context, src Source) ([]byte, int, error) {
	activities, err := src.ListActivities(ctx, store.ActivityFilter{})
	if err != nil {
		return nil, 0, fmt.Errorf("listing activities: %w", err)
	}

	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(activityRow), 4)
	if err != nil {
		return nil, 0, fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, a := range activities {
		if err := pw.Write(newRow(a)); err != nil {
			_ = pw.WriteStop()
			return nil, 0, fmt.Errorf("writing activity %d: %w", a.ID, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, 0, fmt.Errorf("finishing parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, 0, err
	}
	return append([]byte(nil), fw.Bytes()...), len(activities), nil
}

// WriteFile exports every stored activity to path and returns the row count.
func WriteFile(ctx context.Context, src Source, path string) (int, error) {
	data, n, err := Activities(ctx, src)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return n, nil
}
