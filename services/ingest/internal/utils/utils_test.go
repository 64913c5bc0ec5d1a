package utils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/erkkar/tms4-data-reader/tmsreader"
)

func readTestDataset(t *testing.T) (*tmsreader.Dataset, []tmsreader.FileReport) {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"data_7_2023_01_01_0.csv": "1;2023/01/01 00.05;0;5,1;5,2;5,3;100;0;0\n" +
			"2;2023/01/01 00.20;0;5,4;5,5;5,6;101;0;0\n",
		"data_12_2023_01_01_0.csv": "1;2023-01-01T06:00:00;0;1.0;1.0;1.0;90;0;0\n" +
			"2;2023/01/01 06.15;0;1.1;1.1;1.1;bad;0;0\n",
		"data_30_2023_01_01_0.csv": "File is empty\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	r, err := tmsreader.New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ds, reports, err := r.Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	return ds, reports
}

func TestBuildLoggerRows(t *testing.T) {
	ds, _ := readTestDataset(t)

	rows := BuildLoggerRows(ds)
	if len(rows) != 2 {
		t.Fatalf("got %d logger rows, want 2", len(rows))
	}

	if rows[0].ID != 7 || rows[1].ID != 12 {
		t.Errorf("logger IDs = %d, %d, want 7, 12", rows[0].ID, rows[1].ID)
	}
	if rows[0].RowCount != 2 {
		t.Errorf("logger 7 RowCount = %d, want 2", rows[0].RowCount)
	}
	wantFirst := time.Date(2023, 1, 1, 0, 5, 0, 0, time.UTC)
	wantLast := time.Date(2023, 1, 1, 0, 20, 0, 0, time.UTC)
	if !rows[0].FirstTimestamp.Equal(wantFirst) || !rows[0].LastTimestamp.Equal(wantLast) {
		t.Errorf("logger 7 span = %s..%s, want %s..%s",
			rows[0].FirstTimestamp, rows[0].LastTimestamp, wantFirst, wantLast)
	}
	if rows[1].RowCount != 1 {
		t.Errorf("logger 12 RowCount = %d, want 1 (undecodable row dropped)", rows[1].RowCount)
	}
}

func TestBuildMeasurementRows(t *testing.T) {
	ds, _ := readTestDataset(t)

	rows := BuildMeasurementRows(ds)
	if len(rows) != 3 {
		t.Fatalf("got %d measurement rows, want 3", len(rows))
	}

	// Global ordering: timestamp ascending.
	for i := 1; i < len(rows); i++ {
		if rows[i].TS.Before(rows[i-1].TS) {
			t.Errorf("rows out of order at %d: %s before %s", i, rows[i].TS, rows[i-1].TS)
		}
	}

	first := rows[0]
	if first.LoggerID != 7 || first.MeasurementID != 1 {
		t.Errorf("first row = logger %d seq %d, want logger 7 seq 1", first.LoggerID, first.MeasurementID)
	}
	if first.T1 == nil || *first.T1 != 5.1 {
		t.Errorf("first row T1 = %v, want 5.1", first.T1)
	}
}

func TestCountFailures(t *testing.T) {
	_, reports := readTestDataset(t)

	failed, dropped := CountFailures(reports)
	if failed != 1 {
		t.Errorf("failed = %d, want 1 (the empty file)", failed)
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1 (the bad soilmoist row)", dropped)
	}
}

func TestConversions(t *testing.T) {
	ids := ToLoggerIDs([]uint64{3, 1})
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Errorf("ToLoggerIDs = %v", ids)
	}

	raw := ToInt64([]tmsreader.LoggerID{5, 9})
	if len(raw) != 2 || raw[0] != 5 || raw[1] != 9 {
		t.Errorf("ToInt64 = %v", raw)
	}
}
