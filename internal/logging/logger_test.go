package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestWithJobPrefix(t *testing.T) {
	base := NewLogger("queue")
	jobLog := base.WithJob("job-42")

	if jobLog.prefix != "queue:job-42" {
		t.Errorf("prefix: got %q, want %q", jobLog.prefix, "queue:job-42")
	}
	if base.prefix != "queue" {
		t.Errorf("base logger must be unchanged, got %q", base.prefix)
	}
}

func TestLogWithKVFormat(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{prefix: "test", logger: log.New(&buf, "[test] ", 0)}

	l.Info("job received", "document", "bill.pdf", "pages", 3)

	got := buf.String()
	if !strings.Contains(got, "[test] [INFO] job received document=bill.pdf pages=3") {
		t.Errorf("unexpected log line: %q", got)
	}
}

func TestLogWithKVOddPairs(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{prefix: "test", logger: log.New(&buf, "", 0)}

	// A trailing key without a value is dropped rather than misformatted.
	l.Warn("partial", "key")

	got := strings.TrimSpace(buf.String())
	if got != "[WARN] partial" {
		t.Errorf("unexpected log line: %q", got)
	}
}
