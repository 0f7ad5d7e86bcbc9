package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, level string) *Logger {
	l := New(Config{Level: level, Output: buf})
	l.now = func() time.Time { return time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC) }
	return l
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, DEBUG, ParseLevel("DEBUG"))
	require.Equal(t, WARN, ParseLevel("warning"))
	require.Equal(t, ERROR, ParseLevel(" error "))
	require.Equal(t, INFO, ParseLevel("verbose"))
	require.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, "warn")

	l.Debug("hidden")
	l.Infof("hidden %d", 1)
	l.Warnf("cache miss for %s", "mia")
	l.Error("boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "WARN  2025-07-01 09:30:00.000 cache miss for mia", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "ERROR"))
}

func TestWithPrefixNestsAndSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	root := newTestLogger(&buf, "debug")
	child := root.WithPrefix("Handlers").WithPrefix("Players")

	child.Debug("rendered")
	require.Contains(t, buf.String(), "[Handlers:Players]")
	require.Contains(t, buf.String(), "rendered")
}

func TestFatalExits(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, "info")
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatalf("config: %s", "bad")
	require.Equal(t, 1, code)
	require.Contains(t, buf.String(), "FATAL")
}

func TestColorWrapsLine(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Output: &buf, EnableColor: true})
	l.Info("hi")
	require.True(t, strings.HasPrefix(buf.String(), INFO.Color()))
	require.True(t, strings.HasSuffix(buf.String(), colorReset+"\n"))
}
