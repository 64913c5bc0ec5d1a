package tmsreader

import (
	"sort"
	"time"
)

// LoggerID identifies one physical logger/deployment, parsed from the
// export filename.
type LoggerID uint64

// Row is one decoded measurement line with its timestamp resolved to a
// canonical UTC instant. T1–T3 are nil when the source field is missing or
// the null marker. ReadTime is the source file's modification time rounded
// to whole seconds; it captures when the row was ingested, independent of
// measurement time.
type Row struct {
	MeasurementID  uint64
	Timestamp      time.Time
	TZOffset       int
	T1             *float64
	T2             *float64
	T3             *float64
	SoilMoistCount uint
	Shake          uint8
	ErrFlag        uint8
	ReadTime       time.Time
}

// LoggerTable holds the deduplicated rows of one logger, sorted by
// timestamp ascending. Tables are not modified after assembly.
type LoggerTable struct {
	LoggerID LoggerID
	Rows     []Row
}

// DatasetRow is a row in the dataset's global ordering, tagged with its
// logger.
type DatasetRow struct {
	LoggerID LoggerID
	Row
}

// Dataset maps logger IDs to their merged tables. It is immutable once
// returned from Read; callers needing fresh data re-run the pipeline.
// (LoggerID, MeasurementID) is unique across the whole dataset.
type Dataset struct {
	tables map[LoggerID]*LoggerTable
}

// Loggers returns the logger IDs present in the dataset, sorted.
func (d *Dataset) Loggers() []LoggerID {
	ids := make([]LoggerID, 0, len(d.tables))
	for id := range d.tables {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Table returns the table for one logger.
func (d *Dataset) Table(id LoggerID) (*LoggerTable, bool) {
	t, ok := d.tables[id]
	return t, ok
}

// Len returns the total row count across all loggers.
func (d *Dataset) Len() int {
	n := 0
	for _, t := range d.tables {
		n += len(t.Rows)
	}
	return n
}

// Rows returns every row in the dataset in a stable global ordering:
// timestamp ascending, sub-sorted by logger ID.
func (d *Dataset) Rows() []DatasetRow {
	out := make([]DatasetRow, 0, d.Len())
	for id, t := range d.tables {
		for _, row := range t.Rows {
			out = append(out, DatasetRow{LoggerID: id, Row: row})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].LoggerID < out[j].LoggerID
	})
	return out
}

// Missing returns the expected logger IDs that contributed zero rows,
// sorted. This is how a caller discovers loggers whose files were absent or
// all failed parsing.
func (d *Dataset) Missing(expected []LoggerID) []LoggerID {
	missing := make([]LoggerID, 0)
	for _, id := range expected {
		if _, ok := d.tables[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// assemble merges per-file tables into one dataset. A logger with files
// split by date range yields a single table spanning all its rows. The
// duplicate policy is re-applied across file boundaries so overlapping
// re-reads collapse the same way duplicates within one file do, keeping the
// (LoggerID, MeasurementID) key unique.
func assemble(tables []*LoggerTable) *Dataset {
	merged := make(map[LoggerID][]Row)
	for _, t := range tables {
		merged[t.LoggerID] = append(merged[t.LoggerID], t.Rows...)
	}

	ds := &Dataset{tables: make(map[LoggerID]*LoggerTable, len(merged))}
	for id, rows := range merged {
		rows = dedupe(rows)
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Timestamp.Before(rows[j].Timestamp)
		})
		ds.tables[id] = &LoggerTable{LoggerID: id, Rows: rows}
	}
	return ds
}
