package progress

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is how often a running tracker reports.
const DefaultInterval = 250 * time.Millisecond

// Tracker counts the bytes moved by one archive operation and reports
// progress through a logger. Each operation owns its tracker, so
// concurrent operations never share counters.
type Tracker struct {
	log       *zap.Logger
	operation string
	totalSize uint64
	interval  time.Duration

	processed atomic.Uint64
	startTime time.Time

	mu      sync.Mutex
	done    chan struct{}
	stopped chan struct{}
	running bool
}

// New creates a tracker for an operation over totalSize bytes. A zero
// totalSize means the size is unknown.
func New(log *zap.Logger, operation string, totalSize uint64) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		log:       log,
		operation: operation,
		totalSize: totalSize,
		interval:  DefaultInterval,
	}
}

// Start begins periodic reporting. Reporting only happens when the
// logger has debug enabled; otherwise Start just records the start time.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}
	t.startTime = time.Now()
	t.running = true
	if !t.log.Core().Enabled(zap.DebugLevel) {
		return
	}
	t.done = make(chan struct{})
	t.stopped = make(chan struct{})
	go t.report()
}

// Stop ends reporting and logs a summary. It is safe to call more than once.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	done, stopped := t.done, t.stopped
	t.mu.Unlock()

	if done != nil {
		close(done)
		<-stopped
	}

	elapsed := time.Since(t.startTime)
	seconds := elapsed.Seconds()
	if seconds < 0.001 {
		seconds = 0.001
	}
	bytes := t.processed.Load()
	t.log.Debug("completed processing",
		zap.String("operation", t.operation),
		zap.String("size", FormatSize(bytes)),
		zap.Duration("elapsed", elapsed),
		zap.String("avg_rate", FormatRate(uint64(float64(bytes)/seconds))),
	)
}

// AddBytes adds processed bytes to the counter
func (t *Tracker) AddBytes(n uint64) {
	if n > 0 {
		t.processed.Add(n)
	}
}

// Processed returns the number of bytes counted so far.
func (t *Tracker) Processed() uint64 {
	return t.processed.Load()
}

// Percent returns progress as a percentage, or 0 when the total is unknown.
func (t *Tracker) Percent() float64 {
	if t.totalSize == 0 {
		return 0
	}
	return float64(t.processed.Load()) / float64(t.totalSize) * 100
}

func (t *Tracker) report() {
	defer close(t.stopped)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	perSecond := float64(time.Second) / float64(t.interval)
	var prevBytes uint64
	for {
		select {
		case <-ticker.C:
			current := t.processed.Load()
			rate := uint64(float64(current-prevBytes) * perSecond)
			prevBytes = current

			fields := []zap.Field{
				zap.String("operation", t.operation),
				zap.String("processed", FormatSize(current)),
				zap.String("rate", FormatRate(rate)),
			}
			if t.totalSize > 0 {
				fields = append(fields,
					zap.String("total", FormatSize(t.totalSize)),
					zap.String("percent", fmt.Sprintf("%.1f%%", t.Percent())),
					zap.String("eta", eta(t.totalSize, current, rate)),
				)
			}
			t.log.Debug("processing", fields...)
		case <-t.done:
			return
		}
	}
}

func eta(total, current, rate uint64) string {
	if rate == 0 || current >= total {
		return "calculating..."
	}
	secondsRemaining := float64(total-current) / float64(rate)
	switch {
	case secondsRemaining < 60:
		return fmt.Sprintf("%.0f seconds", secondsRemaining)
	case secondsRemaining < 3600:
		return fmt.Sprintf("%.1f minutes", secondsRemaining/60)
	default:
		return fmt.Sprintf("%.1f hours", secondsRemaining/3600)
	}
}

// FormatSize returns a human-readable size string
func FormatSize(bytes uint64) string {
	return humanize(bytes, "B")
}

// FormatRate returns a human-readable rate string
func FormatRate(bytesPerSec uint64) string {
	return humanize(bytesPerSec, "B/s")
}

func humanize(n uint64, suffix string) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d %s", n, suffix)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ci%s", float64(n)/float64(div), "KMGTPE"[exp], suffix)
}

// Writer is a writer that tracks bytes written for progress reporting
type Writer struct {
	W       io.Writer
	Tracker *Tracker
}

// Write implements io.Writer and tracks bytes written
func (pw *Writer) Write(p []byte) (n int, err error) {
	n, err = pw.W.Write(p)
	if n > 0 && pw.Tracker != nil {
		pw.Tracker.AddBytes(uint64(n))
	}
	return
}
