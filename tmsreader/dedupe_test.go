package tmsreader

import (
	"testing"
	"time"
)

func testRow(id uint64, ts time.Time, t1 float64) Row {
	return Row{
		MeasurementID:  id,
		Timestamp:      ts,
		T1:             &t1,
		SoilMoistCount: 100,
	}
}

func TestDedupeKeepsLastOfIdenticalValues(t *testing.T) {
	// Identical field values under different sequence numbers: exactly one
	// survives, the last occurrence.
	ts := time.Date(2023, 1, 1, 0, 5, 0, 0, time.UTC)
	rows := []Row{
		testRow(1, ts, 5.1),
		testRow(2, ts, 5.1),
	}

	out := dedupe(rows)
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
	if out[0].MeasurementID != 2 {
		t.Errorf("survivor MeasurementID = %d, want 2 (keep last)", out[0].MeasurementID)
	}
}

func TestDedupeKeepsDifferingValuesAtSameInstant(t *testing.T) {
	// Same timestamp but different sensor values is a legitimate re-read
	// disagreement, not a re-transmission: both rows survive.
	ts := time.Date(2023, 1, 1, 0, 5, 0, 0, time.UTC)
	rows := []Row{
		testRow(1, ts, 5.1),
		testRow(2, ts, 6.4),
	}

	out := dedupe(rows)
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2", len(out))
	}
}

func TestDedupeEnforcesSequenceUniqueness(t *testing.T) {
	// Two rows sharing a sequence number with differing values: the last
	// wins, keeping (logger, sequence) unique.
	ts := time.Date(2023, 1, 1, 0, 5, 0, 0, time.UTC)
	rows := []Row{
		testRow(9, ts, 5.1),
		testRow(9, ts.Add(15*time.Minute), 6.4),
	}

	out := dedupe(rows)
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
	if out[0].T1 == nil || *out[0].T1 != 6.4 {
		t.Errorf("survivor T1 = %v, want 6.4 (keep last)", out[0].T1)
	}
}

func TestDedupeNilReadings(t *testing.T) {
	ts := time.Date(2023, 1, 1, 0, 5, 0, 0, time.UTC)
	rows := []Row{
		{MeasurementID: 1, Timestamp: ts},
		{MeasurementID: 2, Timestamp: ts},
		{MeasurementID: 3, Timestamp: ts, T1: new(float64)}, // explicit 0.0 differs from missing
	}

	out := dedupe(rows)
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2", len(out))
	}
	if out[0].MeasurementID != 2 || out[1].MeasurementID != 3 {
		t.Errorf("survivors = %d, %d, want 2, 3", out[0].MeasurementID, out[1].MeasurementID)
	}
}

func TestDedupePreservesOrder(t *testing.T) {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []Row{
		testRow(1, base.Add(15*time.Minute), 1.0),
		testRow(2, base.Add(30*time.Minute), 2.0),
		testRow(3, base.Add(15*time.Minute), 1.0), // duplicate of row 1
		testRow(4, base.Add(45*time.Minute), 3.0),
	}

	out := dedupe(rows)
	if len(out) != 3 {
		t.Fatalf("got %d rows, want 3", len(out))
	}
	// Survivors keep their input positions; the duplicate's last occurrence
	// stays where it was.
	want := []uint64{2, 3, 4}
	for i, id := range want {
		if out[i].MeasurementID != id {
			t.Errorf("out[%d].MeasurementID = %d, want %d", i, out[i].MeasurementID, id)
		}
	}
}
