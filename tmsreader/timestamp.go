package tmsreader

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are tried in order. All layouts are year-first; layouts
// without zone information are interpreted as UTC (time.Parse default).
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
}

// loggerExportLayout is the logger firmware's default export format, which
// uses a period instead of a colon as the hour-minute separator. Generic
// parsing rejects it, so it is tried last.
const loggerExportLayout = "2006/01/02 15.04"

// NormalizeTimestamp converts a raw timestamp string to a UTC instant,
// trying the known encodings in priority order. Both encodings the firmware
// has used across versions are detected purely from string shape; no
// configuration is involved.
func NormalizeTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if t, err := time.Parse(loggerExportLayout, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: no known encoding matches %q", ErrTimestamp, raw)
}
