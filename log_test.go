package tiktok

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// ---------------------------------------------------------------------------
// Logger
// ---------------------------------------------------------------------------

var logLinePattern = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] `)

func TestLineFormatter(t *testing.T) {
	t.Parallel()
	e := &logrus.Entry{
		Time:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local),
		Message: "Navigating to video: x",
		Data:    logrus.Fields{"step": "views:marker", "a": 1},
	}
	out, err := lineFormatter{}.Format(e)
	if err != nil {
		t.Fatal(err)
	}
	want := "[2026-01-02 03:04:05] Navigating to video: x a=1 step=views:marker\n"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestNewLogger_MirrorsAndTruncates(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "run.log")
	if err := os.WriteFile(path, []byte("stale line from last run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var console bytes.Buffer
	logger, err := NewLogger(path, &console, false)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("=== Started ===")
	logger.Debug("hidden")
	logger.Warn("second")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "stale") {
		t.Error("log file was not truncated")
	}
	if string(data) != console.String() {
		t.Errorf("console and file differ:\n%q\n%q", console.String(), data)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	for _, l := range lines {
		if !logLinePattern.MatchString(l) {
			t.Errorf("line %q does not match [YYYY-MM-DD HH:MM:SS] format", l)
		}
	}
}

func TestNewLogger_Debug(t *testing.T) {
	t.Parallel()
	var console bytes.Buffer
	logger, err := NewLogger("", &console, true)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("visible")
	if !strings.Contains(console.String(), "visible") {
		t.Error("debug line missing")
	}
}

func TestAppendFile_NoHeldHandle(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "a.log")
	w := appendFile(path)
	if _, err := w.Write([]byte("one\n")); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("two\n")); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "two\n" {
		t.Errorf("expected file to be reopened per write, got %q", data)
	}
}
