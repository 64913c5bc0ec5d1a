package db

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps database access helpers.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Logger represents a per-logger summary record.
type Logger struct {
	ID             int64     `json:"id"`
	FirstTimestamp time.Time `json:"first_timestamp"`
	LastTimestamp  time.Time `json:"last_timestamp"`
	RowCount       int       `json:"row_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

const listLoggersSQL = `
    SELECT id, first_timestamp, last_timestamp, row_count, updated_at
    FROM tms.loggers
    ORDER BY id
`

// ListLoggers returns all logger summaries.
func (s *Store) ListLoggers(ctx context.Context) ([]Logger, error) {
	rows, err := s.pool.Query(ctx, listLoggersSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loggers := make([]Logger, 0)
	for rows.Next() {
		var l Logger
		if err := rows.Scan(
			&l.ID,
			&l.FirstTimestamp,
			&l.LastTimestamp,
			&l.RowCount,
			&l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		loggers = append(loggers, l)
	}
	return loggers, rows.Err()
}

// GetLogger returns one logger summary, or nil when absent.
func (s *Store) GetLogger(ctx context.Context, id int64) (*Logger, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT id, first_timestamp, last_timestamp, row_count, updated_at
    FROM tms.loggers
    WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var l Logger
	if err := rows.Scan(&l.ID, &l.FirstTimestamp, &l.LastTimestamp, &l.RowCount, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, rows.Err()
}

// PresentLoggerIDs returns the IDs of loggers with at least one stored row.
func (s *Store) PresentLoggerIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM tms.loggers WHERE row_count > 0 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Measurement represents one ingested measurement row.
type Measurement struct {
	LoggerID       int64     `json:"logger_id"`
	MeasurementID  int64     `json:"measurement_id"`
	Timestamp      time.Time `json:"ts"`
	TZOffset       int       `json:"tz_offset"`
	T1             *float64  `json:"t1"`
	T2             *float64  `json:"t2"`
	T3             *float64  `json:"t3"`
	SoilMoistCount int64     `json:"soilmoist_count"`
	Shake          int16     `json:"shake"`
	ErrFlag        int16     `json:"err_flag"`
	ReadTime       time.Time `json:"read_time"`
}

// MeasurementQuery holds filters for retrieving measurements.
type MeasurementQuery struct {
	LoggerID int64
	Limit    int
	Since    *time.Time
	Until    *time.Time
}

const measurementsBase = `
    SELECT logger_id, measurement_id, ts, tz_offset, t1, t2, t3, soilmoist_count, shake, err_flag, read_time
    FROM tms.measurements
    WHERE logger_id = $1
`

// FetchMeasurements returns measurements for a logger based on the query.
func (s *Store) FetchMeasurements(ctx context.Context, q MeasurementQuery) ([]Measurement, error) {
	args := []any{q.LoggerID}
	clause := ""
	argPos := 2
	if q.Since != nil {
		clause += " AND ts >= $" + strconv.Itoa(argPos)
		args = append(args, *q.Since)
		argPos++
	}
	if q.Until != nil {
		clause += " AND ts <= $" + strconv.Itoa(argPos)
		args = append(args, *q.Until)
		argPos++
	}
	order := " ORDER BY ts"
	limit := ""
	if q.Limit > 0 {
		limit = " LIMIT $" + strconv.Itoa(argPos)
		args = append(args, q.Limit)
	}

	sql := measurementsBase + clause + order + limit

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	measurements := make([]Measurement, 0)
	for rows.Next() {
		var m Measurement
		if err := rows.Scan(
			&m.LoggerID,
			&m.MeasurementID,
			&m.Timestamp,
			&m.TZOffset,
			&m.T1,
			&m.T2,
			&m.T3,
			&m.SoilMoistCount,
			&m.Shake,
			&m.ErrFlag,
			&m.ReadTime,
		); err != nil {
			return nil, err
		}
		measurements = append(measurements, m)
	}
	return measurements, rows.Err()
}

// IngestRun represents one ingest run's provenance record.
type IngestRun struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	FilesSeen      int       `json:"files_seen"`
	FilesFailed    int       `json:"files_failed"`
	RowsUpserted   int       `json:"rows_upserted"`
	RowsDropped    int       `json:"rows_dropped"`
	MissingLoggers []int64   `json:"missing_loggers"`
}

// ListRuns returns the most recent ingest runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]IngestRun, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT id::text, started_at, finished_at, files_seen, files_failed, rows_upserted, rows_dropped, missing_loggers
    FROM tms.ingest_runs
    ORDER BY started_at DESC
    LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]IngestRun, 0)
	for rows.Next() {
		var r IngestRun
		if err := rows.Scan(
			&r.ID,
			&r.StartedAt,
			&r.FinishedAt,
			&r.FilesSeen,
			&r.FilesFailed,
			&r.RowsUpserted,
			&r.RowsDropped,
			&r.MissingLoggers,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
