// Package report writes the CSV output artifact for a completed job.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"webinar-counter-backend/internal/occupancy"
)

// Writer generates uniquely named CSV reports under a single output directory.
type Writer struct {
	dir    string
	prefix string
}

// NewWriter creates the output directory if needed.
func NewWriter(dir, prefix string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &Writer{dir: dir, prefix: prefix}, nil
}

// Write saves a two-column report, "Time" and "Count (<date>)", for one event
// date and returns the generated file name.
func (w *Writer) Write(dateKey string, points []occupancy.Point) (string, error) {
	id := uuid.New()
	name := fmt.Sprintf("%s_%x.csv", w.prefix, id[:4])

	f, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"Time", fmt.Sprintf("Count (%s)", dateKey)}); err != nil {
		return "", fmt.Errorf("failed to write report header: %w", err)
	}
	for _, p := range points {
		if err := cw.Write([]string{p.Time, p.Display}); err != nil {
			return "", fmt.Errorf("failed to write report row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush report: %w", err)
	}
	return name, nil
}

// Path resolves a generated file name inside the output directory. The name
// is reduced to its base to keep lookups inside the directory.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, filepath.Base(name))
}
