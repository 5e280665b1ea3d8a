// Package runlog appends the per-batch Run Record rows to a CSV file.
//
// One row is appended after all accounts of a batch complete. The row is
// dated with the batch start date; a batch that crosses midnight keeps its
// start date on purpose (one record per invocation).
package runlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
)

var header = []string{"Date", "EarnedPoints", "PointsDifference"}

// Record is one append-only row summarizing a batch.
type Record struct {
	Date             time.Time
	EarnedPoints     int64
	PointsDifference int64
}

// Writer appends records to the CSV file at path, creating it with a header
// row on first use. Rows are never mutated once written.
type Writer struct {
	path string
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

func (w *Writer) Append(r Record) error {
	writeHeader, err := w.isNewFile()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open run log %s: %w", w.path, err)
	}
	cw := csv.NewWriter(file)
	if writeHeader {
		if err := cw.Write(header); err != nil {
			_ = file.Close()
			return fmt.Errorf("write header: %w", err)
		}
	}

	row := []string{
		r.Date.Format("2006-01-02"),
		strconv.FormatInt(r.EarnedPoints, 10),
		strconv.FormatInt(r.PointsDifference, 10),
	}
	if err := cw.Write(row); err != nil {
		_ = file.Close()
		return fmt.Errorf("write row: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = file.Close()
		return fmt.Errorf("flush run log: %w", err)
	}

	return file.Close()
}

func (w *Writer) isNewFile() (bool, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("stat run log %s: %w", w.path, err)
	}
	return info.Size() == 0, nil
}
