package models

import (
	"time"

	"github.com/google/uuid"
)

// LoggerRow captures per-logger summary metadata for DB upserts.
type LoggerRow struct {
	ID             uint64
	FirstTimestamp time.Time
	LastTimestamp  time.Time
	RowCount       int
}

// MeasurementRow is one deduplicated measurement ready for insertion.
type MeasurementRow struct {
	LoggerID       uint64
	MeasurementID  uint64
	TS             time.Time
	TZOffset       int
	T1             *float64
	T2             *float64
	T3             *float64
	SoilMoistCount uint
	Shake          uint8
	ErrFlag        uint8
	ReadTime       time.Time
}

// RunRow records the provenance of one ingest run.
type RunRow struct {
	ID             uuid.UUID
	StartedAt      time.Time
	FinishedAt     time.Time
	FilesSeen      int
	FilesFailed    int
	RowsUpserted   int
	RowsDropped    int
	MissingLoggers []int64
}
