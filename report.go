package tiktok

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CommentSeparator joins top comments in the top_comments column.
const CommentSeparator = " || "

var reportHeader = []string{"timestamp", "video_url", "views", "likes", "top_comments", "simulated_comment", "notes"}

// ReportRow is one line of the CSV report.
type ReportRow struct {
	Timestamp        time.Time
	VideoURL         string
	Views            string
	Likes            string
	TopComments      []string
	SimulatedComment string
	Notes            string
}

// NewReportRow builds the row for a finished scrape.
func NewReportRow(at time.Time, rec VideoRecord, simulated, notes string) ReportRow {
	return ReportRow{
		Timestamp:        at,
		VideoURL:         rec.URL,
		Views:            rec.Views,
		Likes:            rec.Likes,
		TopComments:      append([]string(nil), rec.TopComments...),
		SimulatedComment: simulated,
		Notes:            notes,
	}
}

func (r ReportRow) fields() []string {
	return []string{
		r.Timestamp.Format(time.RFC3339),
		r.VideoURL,
		r.Views,
		r.Likes,
		strings.Join(r.TopComments, CommentSeparator),
		r.SimulatedComment,
		r.Notes,
	}
}

// Sink records the outcome of a run.
type Sink interface {
	Append(row ReportRow) error
}

// CSVReport appends rows to a CSV file, writing the header only when the
// file does not exist yet. The file is opened and closed on every append.
type CSVReport struct {
	path string
}

func NewCSVReport(path string) *CSVReport {
	return &CSVReport{path: path}
}

func (c *CSVReport) Path() string { return c.path }

func (c *CSVReport) Append(row ReportRow) (err error) {
	_, statErr := os.Stat(c.path)
	fresh := errors.Is(statErr, fs.ErrNotExist)

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(reportHeader); err != nil {
			return fmt.Errorf("write report header: %w", err)
		}
	}
	if err := w.Write(row.fields()); err != nil {
		return fmt.Errorf("write report row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}
