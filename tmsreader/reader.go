// Package tmsreader reads measurement files produced for TOMST TMS-4
// loggers by the Lolly export software, normalizing their on-disk
// encodings into a single validated, deduplicated, time-indexed dataset.
package tmsreader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
)

// Reader is bound to a data directory at construction and reads its export
// files on demand. Safe for concurrent use; all methods take a fresh
// directory snapshot.
type Reader struct {
	dir     string
	log     *slog.Logger
	workers int
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the diagnostics sink. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.log = l
		}
	}
}

// WithWorkers bounds the parse worker pool. Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New constructs a Reader for dir. Fails with ErrDirectoryNotFound if dir
// does not exist or is not a directory.
func New(dir string, opts ...Option) (*Reader, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrDirectoryNotFound, dir)
	}

	r := &Reader{
		dir:     dir,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// FileCount returns the number of data files in the directory. Files whose
// name matches the pattern but lacks a logger ID do not count.
func (r *Reader) FileCount() (int, error) {
	files, _, err := discover(r.dir)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// LoggerIDs returns the distinct logger IDs among the data files, sorted.
// A directory may hold multiple files per logger (re-reads).
func (r *Reader) LoggerIDs() ([]LoggerID, error) {
	files, _, err := discover(r.dir)
	if err != nil {
		return nil, err
	}
	seen := make(map[LoggerID]struct{}, len(files))
	ids := make([]LoggerID, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f.id]; ok {
			continue
		}
		seen[f.id] = struct{}{}
		ids = append(ids, f.id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// CheckMissing returns the expected logger IDs that have no data file in
// the directory, sorted.
func (r *Reader) CheckMissing(expected []LoggerID) ([]LoggerID, error) {
	present, err := r.LoggerIDs()
	if err != nil {
		return nil, err
	}
	set := make(map[LoggerID]struct{}, len(present))
	for _, id := range present {
		set[id] = struct{}{}
	}
	missing := make([]LoggerID, 0)
	for _, id := range expected {
		if _, ok := set[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing, nil
}

// Read performs discovery, parallel per-file parsing, deduplication and the
// final merge in one call. Failed files are skipped and surfaced in the
// reports, never propagated; only directory-level failure or context
// cancellation returns an error.
func (r *Reader) Read(ctx context.Context) (*Dataset, []FileReport, error) {
	files, reports, err := discover(r.dir)
	if err != nil {
		return nil, nil, err
	}
	for _, rep := range reports {
		r.log.Warn("skipping file", "file", filepath.Base(rep.Path), "reason", rep.Kind.String())
	}

	workers := r.workers
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	tables := make([]*LoggerTable, len(files))
	fileReports := make([]FileReport, len(files))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

scan:
	for i, f := range files {
		select {
		case <-ctx.Done():
			break scan
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, f dataFile) {
			defer wg.Done()
			defer func() { <-sem }()
			tables[i], fileReports[i] = r.processFile(f)
		}(i, f)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	parsed := make([]*LoggerTable, 0, len(tables))
	for _, t := range tables {
		if t != nil {
			parsed = append(parsed, t)
		}
	}
	reports = append(reports, fileReports...)
	return assemble(parsed), reports, nil
}

// processFile owns one file's bytes end to end: parse, per-file dedup,
// outcome classification. The result is immutable once handed to the merge.
func (r *Reader) processFile(f dataFile) (*LoggerTable, FileReport) {
	rep := FileReport{Path: f.path, LoggerID: f.id}
	name := filepath.Base(f.path)

	rows, dropped, err := parseFile(f.path)
	rep.RowsDropped = len(dropped)
	if err != nil {
		rep.Err = err
		switch {
		case errors.Is(err, ErrEmptyFile):
			rep.Kind = FailureEmptyFile
			r.log.Info("empty file", "file", name, "logger", uint64(f.id))
		case errors.Is(err, ErrTimestamp):
			rep.Kind = FailureTimestamp
			r.log.Warn("failed reading file", "file", name, "error", err)
		default:
			rep.Kind = FailureStructural
			r.log.Warn("failed reading file", "file", name, "error", err)
		}
		return nil, rep
	}

	if len(rows) == 0 {
		rep.Kind = FailureAllRowsDropped
		r.log.Warn("every row dropped", "file", name, "rows", dropped)
		return nil, rep
	}
	if len(dropped) > 0 {
		r.log.Debug("dropped undecodable rows", "file", name, "rows", dropped)
	}

	rows = dedupe(rows)
	rep.Rows = len(rows)
	return &LoggerTable{LoggerID: f.id, Rows: rows}, rep
}
