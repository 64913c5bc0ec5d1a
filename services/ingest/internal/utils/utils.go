package utils

import (
	"github.com/erkkar/tms4-data-reader/services/ingest/internal/models"
	"github.com/erkkar/tms4-data-reader/tmsreader"
)

// BuildLoggerRows summarizes each logger table into a database-ready row.
func BuildLoggerRows(ds *tmsreader.Dataset) []models.LoggerRow {
	ids := ds.Loggers()
	rows := make([]models.LoggerRow, 0, len(ids))
	for _, id := range ids {
		table, ok := ds.Table(id)
		if !ok || len(table.Rows) == 0 {
			continue
		}
		rows = append(rows, models.LoggerRow{
			ID:             uint64(id),
			FirstTimestamp: table.Rows[0].Timestamp,
			LastTimestamp:  table.Rows[len(table.Rows)-1].Timestamp,
			RowCount:       len(table.Rows),
		})
	}
	return rows
}

// BuildMeasurementRows flattens the dataset into insertion candidates in
// the dataset's global ordering.
func BuildMeasurementRows(ds *tmsreader.Dataset) []models.MeasurementRow {
	rows := make([]models.MeasurementRow, 0, ds.Len())
	for _, r := range ds.Rows() {
		rows = append(rows, models.MeasurementRow{
			LoggerID:       uint64(r.LoggerID),
			MeasurementID:  r.MeasurementID,
			TS:             r.Timestamp,
			TZOffset:       r.TZOffset,
			T1:             r.T1,
			T2:             r.T2,
			T3:             r.T3,
			SoilMoistCount: r.SoilMoistCount,
			Shake:          r.Shake,
			ErrFlag:        r.ErrFlag,
			ReadTime:       r.ReadTime,
		})
	}
	return rows
}

// CountFailures tallies skipped files and value-level row drops from the
// per-file reports.
func CountFailures(reports []tmsreader.FileReport) (failed, dropped int) {
	for _, rep := range reports {
		if rep.Kind != tmsreader.FailureNone {
			failed++
		}
		dropped += rep.RowsDropped
	}
	return failed, dropped
}

// ToLoggerIDs converts configured logger IDs to the reader's type.
func ToLoggerIDs(ids []uint64) []tmsreader.LoggerID {
	out := make([]tmsreader.LoggerID, 0, len(ids))
	for _, id := range ids {
		out = append(out, tmsreader.LoggerID(id))
	}
	return out
}

// ToInt64 converts logger IDs for a bigint[] column.
func ToInt64(ids []tmsreader.LoggerID) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		out = append(out, int64(id))
	}
	return out
}
