package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/flowfield/config"
)

// csvLog is an append-only CSV file whose header is written with the first row.
type csvLog struct {
	file   *os.File
	header bool
}

func createCSVLog(dir, name string) (*csvLog, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog{file: f}, nil
}

// appendRow writes row to l, preceded by the header on first use.
func appendRow[T any](l *csvLog, row T) error {
	rows := []T{row}
	if l.header {
		return gocsv.MarshalWithoutHeaders(rows, l.file)
	}
	if err := gocsv.Marshal(rows, l.file); err != nil {
		return err
	}
	l.header = true
	return nil
}

// OutputManager writes a run's CSV logs, config and snapshots into one directory.
type OutputManager struct {
	dir       string
	frames    *csvLog
	perf      *csvLog
	bookmarks *csvLog
}

// NewOutputManager creates dir and its CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	for _, out := range []struct {
		log  **csvLog
		name string
	}{
		{&om.frames, "frames.csv"},
		{&om.perf, "perf.csv"},
		{&om.bookmarks, "bookmarks.csv"},
	} {
		l, err := createCSVLog(dir, out.name)
		if err != nil {
			om.Close()
			return nil, err
		}
		*out.log = l
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteFrames appends a window stats row to frames.csv.
func (om *OutputManager) WriteFrames(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := appendRow(om.frames, stats); err != nil {
		return fmt.Errorf("writing frames: %w", err)
	}
	return nil
}

// WritePerf appends a perf row to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd uint64) error {
	if om == nil {
		return nil
	}
	if err := appendRow(om.perf, stats.ToCSV(windowEnd)); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark appends a bookmark row to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := appendRow(om.bookmarks, b); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WriteSnapshot saves a state snapshot into the output directory.
func (om *OutputManager) WriteSnapshot(snapshot *Snapshot) (string, error) {
	if om == nil || snapshot == nil {
		return "", nil
	}
	return SaveSnapshot(snapshot, filepath.Join(om.dir, "snapshots"))
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes every open CSV file.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var errs []error
	for _, l := range []*csvLog{om.frames, om.perf, om.bookmarks} {
		if l != nil {
			errs = append(errs, l.file.Close())
		}
	}
	return errors.Join(errs...)
}
