package tmsreader

import "errors"

// Sentinel errors for the failure taxonomy. File-level failures are never
// propagated out of Read; they surface as FileReport entries instead.
var (
	ErrDirectoryNotFound = errors.New("directory not found")
	ErrMalformedFilename = errors.New("malformed filename")
	ErrEmptyFile         = errors.New("file is empty")
	ErrStructural        = errors.New("structural error")
	ErrTimestamp         = errors.New("timestamp error")
)

// FailureKind classifies the outcome of processing one discovered file.
type FailureKind int

const (
	// FailureNone marks a file that contributed rows to the dataset.
	FailureNone FailureKind = iota
	// FailureMalformedFilename marks a file matching the naming pattern but
	// missing the logger ID digit run. Excluded from file and logger counts.
	FailureMalformedFilename
	// FailureEmptyFile marks an intentionally-empty file (the logger's
	// "File is empty" export state). Informational, not corruption.
	FailureEmptyFile
	// FailureStructural marks a delimiter/column-count mismatch; the whole
	// file is excluded.
	FailureStructural
	// FailureTimestamp marks a timestamp no known encoding could decode;
	// the whole file is excluded.
	FailureTimestamp
	// FailureAllRowsDropped marks a file whose every row was lost to
	// field-level decode errors.
	FailureAllRowsDropped
)

var failureKindNames = map[FailureKind]string{
	FailureNone:              "ok",
	FailureMalformedFilename: "malformed_filename",
	FailureEmptyFile:         "empty_file",
	FailureStructural:        "structural_error",
	FailureTimestamp:         "timestamp_error",
	FailureAllRowsDropped:    "all_rows_dropped",
}

func (k FailureKind) String() string {
	if name, ok := failureKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// FileReport records the per-file outcome of a Read call, for both
// successfully merged files and skipped ones.
type FileReport struct {
	Path        string
	LoggerID    LoggerID
	Kind        FailureKind
	Err         error
	Rows        int // rows contributed after deduplication
	RowsDropped int // rows lost to field-level decode errors
}
