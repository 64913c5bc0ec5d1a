package tmsreader

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// emptyFileSentinel is the sole content of a valid, intentionally-empty
// export. A known logger state, not corruption.
const emptyFileSentinel = "File is empty"

// parseFile reads one export file and decodes it into rows. The returned
// strings describe rows dropped to field-level decode errors (line and
// column). Errors wrap the sentinel taxonomy; any error means the whole
// file contributed nothing.
func parseFile(path string) ([]Row, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	text := string(raw)
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == emptyFileSentinel {
		return nil, nil, ErrEmptyFile
	}

	// Some firmware versions export floats with a comma decimal separator.
	// No other field legitimately contains a comma, so normalize the whole
	// text before structured decoding.
	text = strings.ReplaceAll(text, ",", ".")

	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	readTime := info.ModTime().Round(time.Second).UTC()

	var rows []Row
	var dropped []string
	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ";")
		if len(fields) != NumColumns {
			return nil, nil, fmt.Errorf("%w: line %d has %d fields, want %d",
				ErrStructural, lineNo+1, len(fields), NumColumns)
		}
		row, badColumn, err := decodeRow(fields, readTime)
		if err != nil {
			return nil, nil, err
		}
		if badColumn != "" {
			dropped = append(dropped, fmt.Sprintf("line %d: %s", lineNo+1, badColumn))
			continue
		}
		rows = append(rows, row)
	}
	return rows, dropped, nil
}

// decodeRow decodes one line's fields per the schema. A non-empty column
// name drops the single row (a field that stayed unparseable after
// normalization); a timestamp no known encoding matches is returned as an
// error and fails the whole file.
func decodeRow(fields []string, readTime time.Time) (Row, string, error) {
	var row Row

	id, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return row, Columns[0].Name, nil
	}

	ts, err := NormalizeTimestamp(fields[1])
	if err != nil {
		return row, "", err
	}

	tz, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return row, Columns[2].Name, nil
	}

	var temps [3]*float64
	for i := 3; i <= 5; i++ {
		t, ok := parseTemperature(fields[i])
		if !ok {
			return row, Columns[i].Name, nil
		}
		temps[i-3] = t
	}

	soil, err := strconv.ParseUint(strings.TrimSpace(fields[6]), 10, 32)
	if err != nil {
		return row, Columns[6].Name, nil
	}
	shake, err := strconv.ParseUint(strings.TrimSpace(fields[7]), 10, 8)
	if err != nil {
		return row, Columns[7].Name, nil
	}
	errFlag, err := strconv.ParseUint(strings.TrimSpace(fields[8]), 10, 8)
	if err != nil {
		return row, Columns[8].Name, nil
	}

	row = Row{
		MeasurementID:  id,
		Timestamp:      ts,
		TZOffset:       tz,
		T1:             temps[0],
		T2:             temps[1],
		T3:             temps[2],
		SoilMoistCount: uint(soil),
		Shake:          uint8(shake),
		ErrFlag:        uint8(errFlag),
		ReadTime:       readTime,
	}
	return row, "", nil
}

// parseTemperature decodes an optional temperature reading. Missing and
// null markers yield nil; anything else unparseable drops the row.
func parseTemperature(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "nan") {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}
