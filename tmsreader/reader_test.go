package tmsreader

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func mustRead(t *testing.T, dir string) (*Dataset, []FileReport) {
	t.Helper()
	r, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ds, reports, err := r.Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	return ds, reports
}

func reportFor(t *testing.T, reports []FileReport, id LoggerID) FileReport {
	t.Helper()
	for _, rep := range reports {
		if rep.LoggerID == id {
			return rep
		}
	}
	t.Fatalf("no report for logger %d", id)
	return FileReport{}
}

// Two encodings of the same instant with equal values collapse to a single
// row: the duplicate key covers every decoded field except the sequence
// number, and both lines carry sequence number 1.
func TestReadCollapsesEncodingVariants(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "data_7_2023_01_01_0.csv",
		"1;2023/01/01 00.05;0;5,1;5,2;5,3;100;0;0\n"+
			"1;2023-01-01T00:05:00;0;5.1;5.2;5.3;100;0;0\n")

	ds, _ := mustRead(t, dir)
	if ds.Len() != 1 {
		t.Fatalf("dataset has %d rows, want 1", ds.Len())
	}

	table, ok := ds.Table(7)
	if !ok {
		t.Fatal("no table for logger 7")
	}
	row := table.Rows[0]
	if want := time.Date(2023, 1, 1, 0, 5, 0, 0, time.UTC); !row.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %s, want %s", row.Timestamp, want)
	}
	if row.T1 == nil || *row.T1 != 5.1 {
		t.Errorf("T1 = %v, want 5.1", row.T1)
	}
}

func TestReadSkipsBadFileKeepsSiblings(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "data_7_2023_01_01_0.csv",
		"1;2023/01/01 00.05;0;5.1;5.2;5.3;100;0;0\n")
	// Too few delimiters on the second line: the whole file is excluded.
	writeDataFile(t, dir, "data_8_2023_01_01_0.csv",
		"1;2023/01/01 00.05;0;5.1;5.2;5.3;100;0;0\n"+
			"2;2023/01/01 00.20\n")
	writeDataFile(t, dir, "data_9_2023_01_01_0.csv", "File is empty\n")

	ds, reports := mustRead(t, dir)

	if got := ds.Loggers(); len(got) != 1 || got[0] != 7 {
		t.Errorf("Loggers = %v, want [7]", got)
	}
	if rep := reportFor(t, reports, 8); rep.Kind != FailureStructural {
		t.Errorf("logger 8 report kind = %s, want structural_error", rep.Kind)
	}
	// The empty sentinel is an expected logger state, not a structural error.
	if rep := reportFor(t, reports, 9); rep.Kind != FailureEmptyFile {
		t.Errorf("logger 9 report kind = %s, want empty_file", rep.Kind)
	}
	if rep := reportFor(t, reports, 7); rep.Kind != FailureNone || rep.Rows != 1 {
		t.Errorf("logger 7 report = %+v, want ok with 1 row", rep)
	}
}

func TestReadMergesFilesPerLogger(t *testing.T) {
	dir := t.TempDir()
	// Two re-reads of logger 5 with overlapping sequence numbers; the later
	// file revises the value of sequence 2.
	writeDataFile(t, dir, "data_5_2023_01_01_0.csv",
		"1;2023/01/01 00.05;0;1.0;1.0;1.0;100;0;0\n"+
			"2;2023/01/01 00.20;0;2.0;2.0;2.0;100;0;0\n")
	writeDataFile(t, dir, "data_5_2023_02_01_0.csv",
		"2;2023/01/01 00.20;0;2.5;2.0;2.0;100;0;0\n"+
			"3;2023/02/01 00.05;0;3.0;3.0;3.0;100;0;0\n")

	ds, _ := mustRead(t, dir)

	table, ok := ds.Table(5)
	if !ok {
		t.Fatal("no table for logger 5")
	}
	if len(table.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(table.Rows))
	}

	var ids []uint64
	for _, row := range table.Rows {
		ids = append(ids, row.MeasurementID)
		if len(ids) > 1 && row.Timestamp.Before(table.Rows[len(ids)-2].Timestamp) {
			t.Errorf("rows not sorted by timestamp: %v", table.Rows)
		}
	}
	if !reflect.DeepEqual(ids, []uint64{1, 2, 3}) {
		t.Errorf("sequence numbers = %v, want [1 2 3]", ids)
	}

	for _, row := range table.Rows {
		if row.MeasurementID == 2 && (row.T1 == nil || *row.T1 != 2.5) {
			t.Errorf("sequence 2 T1 = %v, want 2.5 (later file wins)", row.T1)
		}
	}
}

func TestReadGlobalOrdering(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "data_2_2023_01_01_0.csv",
		"1;2023/01/01 00.05;0;1.0;1.0;1.0;100;0;0\n"+
			"2;2023/01/01 00.35;0;1.0;1.0;1.0;101;0;0\n")
	writeDataFile(t, dir, "data_1_2023_01_01_0.csv",
		"1;2023/01/01 00.20;0;1.0;1.0;1.0;100;0;0\n"+
			"2;2023/01/01 00.35;0;1.0;1.0;1.0;101;0;0\n")

	ds, _ := mustRead(t, dir)

	rows := ds.Rows()
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	// Timestamp ascending, sub-sorted by logger ID at the shared instant.
	wantLoggers := []LoggerID{2, 1, 1, 2}
	for i, want := range wantLoggers {
		if rows[i].LoggerID != want {
			t.Errorf("rows[%d].LoggerID = %d, want %d", i, rows[i].LoggerID, want)
		}
	}
}

func TestReadIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "data_7_2023_01_01_0.csv",
		"1;2023/01/01 00.05;0;5,1;5,2;5,3;100;0;0\n"+
			"2;2023-01-01T00:20:00;0;5.1;5.2;5.3;101;0;0\n")
	writeDataFile(t, dir, "data_8_2023_01_01_0.csv",
		"1;2023/01/01 00.05;0;6.1;6.2;6.3;100;0;0\n")

	first, _ := mustRead(t, dir)
	second, _ := mustRead(t, dir)

	if !reflect.DeepEqual(first.Rows(), second.Rows()) {
		t.Error("two reads of an unchanged directory differ")
	}
}

func TestReadDatasetMissing(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "data_1_2023_01_01_0.csv",
		"1;2023/01/01 00.05;0;5.1;5.2;5.3;100;0;0\n")
	// Logger 2 has a file, but every row in it fails parsing, so it still
	// contributes nothing to the dataset.
	writeDataFile(t, dir, "data_2_2023_01_01_0.csv",
		"1;2023/01/01 00.05;0;5.1;5.2;5.3;oops;0;0\n")

	ds, reports := mustRead(t, dir)

	missing := ds.Missing([]LoggerID{1, 2, 3})
	if len(missing) != 2 || missing[0] != 2 || missing[1] != 3 {
		t.Errorf("Missing = %v, want [2 3]", missing)
	}
	if rep := reportFor(t, reports, 2); rep.Kind != FailureAllRowsDropped || rep.RowsDropped != 1 {
		t.Errorf("logger 2 report = %+v, want all_rows_dropped with 1 dropped", rep)
	}
}

func TestReadCancelled(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"data_1_2023_01_01_0.csv", "data_2_2023_01_01_0.csv"} {
		writeDataFile(t, dir, name, "1;2023/01/01 00.05;0;5.1;5.2;5.3;100;0;0\n")
	}

	r, err := New(dir, WithWorkers(1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := r.Read(ctx); err != context.Canceled {
		t.Errorf("Read with cancelled context error = %v, want context.Canceled", err)
	}
}
