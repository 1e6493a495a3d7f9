package progress

import (
	"bytes"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatRate(2048); got != "2.0 KiB/s" {
		t.Errorf("FormatRate(2048) = %q", got)
	}
}

func TestWriter_CountsBytes(t *testing.T) {
	tr := New(nil, "compress", 10)
	var buf bytes.Buffer
	w := &Writer{W: &buf, Tracker: tr}

	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if tr.Processed() != 5 {
		t.Errorf("Processed() = %d, want 5", tr.Processed())
	}
	if tr.Percent() != 50 {
		t.Errorf("Percent() = %v, want 50", tr.Percent())
	}
}

func TestTracker_UnknownTotal(t *testing.T) {
	tr := New(nil, "decompress", 0)
	tr.AddBytes(100)
	if tr.Percent() != 0 {
		t.Errorf("Percent() = %v, want 0 for unknown total", tr.Percent())
	}
}

func TestTracker_StartStopLogsSummary(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tr := New(zap.New(core), "compress", 4096)
	tr.interval = 5 * time.Millisecond

	tr.Start()
	tr.AddBytes(4096)
	time.Sleep(20 * time.Millisecond)
	tr.Stop()
	tr.Stop()

	if logs.FilterMessage("completed processing").Len() != 1 {
		t.Errorf("expected exactly one summary entry, got %d", logs.FilterMessage("completed processing").Len())
	}
	if logs.FilterMessage("processing").Len() == 0 {
		t.Error("expected periodic progress entries")
	}
}

func TestTracker_StopWithoutStart(t *testing.T) {
	tr := New(nil, "compress", 1)
	tr.Stop()
}
