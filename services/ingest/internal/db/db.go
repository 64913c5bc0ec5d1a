package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/erkkar/tms4-data-reader/services/ingest/internal/models"
)

// UpsertLoggers inserts/updates per-logger summary records.
func UpsertLoggers(ctx context.Context, pool *pgxpool.Pool, loggers []models.LoggerRow) error {
	if len(loggers) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO tms.loggers (id, first_timestamp, last_timestamp, row_count, created_at, updated_at)
VALUES ($1,$2,$3,$4,NOW(),NOW())
ON CONFLICT (id) DO UPDATE
SET first_timestamp = LEAST(tms.loggers.first_timestamp, EXCLUDED.first_timestamp),
    last_timestamp = GREATEST(tms.loggers.last_timestamp, EXCLUDED.last_timestamp),
    row_count = EXCLUDED.row_count,
    updated_at = NOW()`

	for _, l := range loggers {
		batch.Queue(query, int64(l.ID), l.FirstTimestamp, l.LastTimestamp, l.RowCount)
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for range loggers {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}

	return nil
}

// UpsertMeasurements writes deduplicated rows, keyed by
// (logger_id, measurement_id) so re-ingesting an unchanged directory is
// idempotent and re-reads revise earlier values.
func UpsertMeasurements(ctx context.Context, pool *pgxpool.Pool, rows []models.MeasurementRow, runID uuid.UUID) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO tms.measurements
(logger_id, measurement_id, ts, tz_offset, t1, t2, t3, soilmoist_count, shake, err_flag, read_time, run_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW(),NOW())
ON CONFLICT (logger_id, measurement_id) DO UPDATE
SET ts = EXCLUDED.ts,
    tz_offset = EXCLUDED.tz_offset,
    t1 = EXCLUDED.t1,
    t2 = EXCLUDED.t2,
    t3 = EXCLUDED.t3,
    soilmoist_count = EXCLUDED.soilmoist_count,
    shake = EXCLUDED.shake,
    err_flag = EXCLUDED.err_flag,
    read_time = EXCLUDED.read_time,
    run_id = EXCLUDED.run_id,
    updated_at = NOW()`

	for _, m := range rows {
		batch.Queue(query,
			int64(m.LoggerID), int64(m.MeasurementID), m.TS, m.TZOffset,
			m.T1, m.T2, m.T3, int64(m.SoilMoistCount), int16(m.Shake), int16(m.ErrFlag),
			m.ReadTime, runID)
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for range rows {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}

	return nil
}

// RecordRun stores the provenance record of one ingest run.
func RecordRun(ctx context.Context, pool *pgxpool.Pool, run models.RunRow) error {
	_, err := pool.Exec(ctx, `INSERT INTO tms.ingest_runs
(id, started_at, finished_at, files_seen, files_failed, rows_upserted, rows_dropped, missing_loggers)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		run.ID, run.StartedAt, run.FinishedAt,
		run.FilesSeen, run.FilesFailed, run.RowsUpserted, run.RowsDropped,
		run.MissingLoggers)
	return err
}
