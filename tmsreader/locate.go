package tmsreader

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// filePattern matches the Lolly export naming convention
// data_<loggerID>_<YYYY>_<MM>_<DD>_<serial>.csv, non-recursively.
const filePattern = "data_*_????_??_??_?.csv"

var loggerIDPattern = regexp.MustCompile(`^data_(\d+)_`)

// dataFile carries the logger ID derived at discovery time alongside the
// path, so it is never re-derived mid-pipeline.
type dataFile struct {
	path string
	id   LoggerID
}

// LoggerIDFromPath extracts the logger ID embedded in an export filename:
// the digit run immediately after the data_ prefix.
func LoggerIDFromPath(path string) (LoggerID, error) {
	m := loggerIDPattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, fmt.Errorf("%w: %s", ErrMalformedFilename, filepath.Base(path))
	}
	id, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMalformedFilename, filepath.Base(path), err)
	}
	return LoggerID(id), nil
}

// discover resolves the candidate data files in dir, sorted by name for a
// deterministic merge order. Matching files whose logger ID cannot be
// extracted are returned separately; they do not count as data files.
func discover(dir string) ([]dataFile, []FileReport, error) {
	matches, err := filepath.Glob(filepath.Join(dir, filePattern))
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(matches)

	files := make([]dataFile, 0, len(matches))
	var malformed []FileReport
	for _, path := range matches {
		id, err := LoggerIDFromPath(path)
		if err != nil {
			malformed = append(malformed, FileReport{
				Path: path,
				Kind: FailureMalformedFilename,
				Err:  err,
			})
			continue
		}
		files = append(files, dataFile{path: path, id: id})
	}
	return files, malformed, nil
}
