package tiktok

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// CSV report
// ---------------------------------------------------------------------------

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	return records
}

func TestCSVReport_HeaderOnce(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "report.csv")
	r := NewCSVReport(path)

	at := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	rec := VideoRecord{
		URL:         testVideoURL,
		Views:       "1.2M",
		Likes:       "50",
		TopComments: []string{"first, really", `he said "wow"`},
	}
	for range 2 {
		if err := r.Append(NewReportRow(at, rec, "Nice #fyp #viral", "ok")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	records := readCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "timestamp,video_url,views,likes,top_comments,simulated_comment,notes" {
		t.Errorf("unexpected header %v", records[0])
	}
	want := []string{
		"2026-10-16T09:30:00Z",
		testVideoURL,
		"1.2M",
		"50",
		`first, really || he said "wow"`,
		"Nice #fyp #viral",
		"ok",
	}
	for i, got := range records[1] {
		if got != want[i] {
			t.Errorf("column %d: got %q, want %q", i, got, want[i])
		}
	}
}

func TestCSVReport_ExistingFileGetsNoHeader(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := os.WriteFile(path, []byte("previous,run\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := VideoRecord{URL: testVideoURL, Views: NotAvailable, Likes: NotAvailable}
	if err := NewCSVReport(path).Append(NewReportRow(time.Now(), rec, "x", "partial")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.Count(string(data), "timestamp,") != 0 {
		t.Errorf("header written into existing file:\n%s", data)
	}
	if !strings.HasPrefix(string(data), "previous,run\n") {
		t.Errorf("existing content not preserved:\n%s", data)
	}
}

func TestCSVReport_EmptyComments(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "report.csv")
	rec := VideoRecord{URL: testVideoURL, Views: "1", Likes: "2", TopComments: []string{}}
	if err := NewCSVReport(path).Append(NewReportRow(time.Now(), rec, "x", "ok")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	records := readCSV(t, path)
	if records[1][4] != "" {
		t.Errorf("expected empty top_comments, got %q", records[1][4])
	}
}

func TestCSVReport_Unwritable(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	r := NewCSVReport(dir)
	if err := r.Append(ReportRow{}); err == nil {
		t.Error("expected error appending to a directory")
	}
	if r.Path() != dir {
		t.Errorf("unexpected path %q", r.Path())
	}
}

func TestNewReportRow_CopiesComments(t *testing.T) {
	t.Parallel()
	rec := VideoRecord{TopComments: []string{"a"}}
	row := NewReportRow(time.Now(), rec, "", "")
	rec.TopComments[0] = "changed"
	if row.TopComments[0] != "a" {
		t.Error("row shares the record's comment slice")
	}
}
