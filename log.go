package tiktok

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

const logTimestampFormat = "2006-01-02 15:04:05"

// lineFormatter renders "[YYYY-MM-DD HH:MM:SS] message key=value ...".
type lineFormatter struct{}

func (lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("[")
	b.WriteString(e.Time.Format(logTimestampFormat))
	b.WriteString("] ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// appendFile is an io.Writer that opens, appends to and closes path on
// every write, so no handle outlives a log line.
type appendFile string

func (p appendFile) Write(b []byte) (int, error) {
	f, err := os.OpenFile(string(p), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := f.Write(b)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// NewLogger returns a logger that mirrors every line to console and to
// logFile. The log file is truncated first. An empty logFile logs to
// console only.
func NewLogger(logFile string, console io.Writer, debug bool) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(lineFormatter{})
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	if console == nil {
		console = os.Stdout
	}
	if logFile == "" {
		logger.SetOutput(console)
		return logger, nil
	}

	if dir := filepath.Dir(logFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, fmt.Errorf("truncate log file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("truncate log file: %w", err)
	}

	logger.SetOutput(io.MultiWriter(console, appendFile(logFile)))
	return logger, nil
}
