package tmsreader

// Duplicate policy: full-row equality, keep last.
//
// The equality key is every decoded field except the measurement sequence
// number, which is the table index rather than data. Exact re-transmissions
// collapse to the latest occurrence; rows with differing sensor values at
// the same instant are both kept. A second pass then enforces sequence
// number uniqueness within the table (again keep last), so that
// (LoggerID, MeasurementID) stays unique across the dataset.

type rowKey struct {
	ts             int64
	tzOffset       int
	t1, t2, t3     float64
	t1n, t2n, t3n  bool
	soilMoistCount uint
	shake          uint8
	errFlag        uint8
	readTime       int64
}

func keyOf(r Row) rowKey {
	k := rowKey{
		ts:             r.Timestamp.UnixNano(),
		tzOffset:       r.TZOffset,
		soilMoistCount: r.SoilMoistCount,
		shake:          r.Shake,
		errFlag:        r.ErrFlag,
		readTime:       r.ReadTime.UnixNano(),
	}
	if r.T1 != nil {
		k.t1 = *r.T1
	} else {
		k.t1n = true
	}
	if r.T2 != nil {
		k.t2 = *r.T2
	} else {
		k.t2n = true
	}
	if r.T3 != nil {
		k.t3 = *r.T3
	} else {
		k.t3n = true
	}
	return k
}

// dedupe removes duplicate rows, preserving the input order of the
// survivors.
func dedupe(rows []Row) []Row {
	if len(rows) < 2 {
		return rows
	}

	lastByValue := make(map[rowKey]int, len(rows))
	for i, r := range rows {
		lastByValue[keyOf(r)] = i
	}

	valueUnique := rows[:0:0]
	for i, r := range rows {
		if lastByValue[keyOf(r)] == i {
			valueUnique = append(valueUnique, r)
		}
	}

	lastBySeq := make(map[uint64]int, len(valueUnique))
	for i, r := range valueUnique {
		lastBySeq[r.MeasurementID] = i
	}

	out := valueUnique[:0:0]
	for i, r := range valueUnique {
		if lastBySeq[r.MeasurementID] == i {
			out = append(out, r)
		}
	}
	return out
}
