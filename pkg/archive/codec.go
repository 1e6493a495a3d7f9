// Package archive compresses and decompresses single files into
// gzip-compatible containers, and sniffs container signatures.
//
// Each call is synchronous and reads the whole payload into memory, so
// file sizes are bounded by Options.MaxBufferBytes. Calls on distinct
// file pairs may run concurrently; callers must serialize access to any
// one path.
package archive

import (
	"os"
	"time"

	"go.uber.org/zap"

	"docutil/pkg/metrics"
)

// RetryPolicy bounds how long DecompressFile waits for a locked archive.
type RetryPolicy struct {
	Count int           // retries after the first attempt
	Delay time.Duration // pause before each retry
}

// Options configures a Codec.
type Options struct {
	Retry  RetryPolicy
	Format Format
	Level  int // -1 for the library default

	// MaxBufferBytes caps the in-memory payload. Zero disables the cap.
	MaxBufferBytes int64

	// After writing, the codec polls until the output can be opened for
	// reading. A zero timeout makes a single check.
	ReadableTimeout      time.Duration
	ReadablePollInterval time.Duration
}

// DefaultOptions returns the options used by Default.
func DefaultOptions() Options {
	return Options{
		Retry: RetryPolicy{
			Count: 5,
			Delay: 200 * time.Millisecond,
		},
		Format:               FormatGzip,
		Level:                -1,
		MaxBufferBytes:       2 << 30,
		ReadableTimeout:      5 * time.Second,
		ReadablePollInterval: 100 * time.Millisecond,
	}
}

// Result describes a completed operation.
type Result struct {
	Format   Format
	BytesIn  int64
	BytesOut int64
	Retries  int // open attempts retried after a sharing violation
	Duration time.Duration
}

// Opener opens a file for reading. Tests substitute it to simulate lock
// contention and allocation failures.
type Opener func(path string) (*os.File, error)

// Sleeper pauses between retries.
type Sleeper func(d time.Duration)

// Codec performs archive operations. It holds no per-call state.
type Codec struct {
	opts    Options
	log     *zap.Logger
	metrics *metrics.Registry
	open    Opener
	create  func(path string) (*os.File, error)
	sleep   Sleeper
}

// Option customizes a Codec.
type Option func(*Codec)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Codec) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics records operations into reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(c *Codec) { c.metrics = reg }
}

// WithOpener replaces os.Open for archive, input and readability checks.
func WithOpener(open Opener) Option {
	return func(c *Codec) {
		if open != nil {
			c.open = open
		}
	}
}

// WithSleeper replaces time.Sleep for retry and readability polling.
func WithSleeper(sleep Sleeper) Option {
	return func(c *Codec) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// New creates a Codec.
func New(opts Options, options ...Option) *Codec {
	c := &Codec{
		opts:   opts,
		log:    zap.NewNop(),
		open:   os.Open,
		create: os.Create,
		sleep:  time.Sleep,
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Default returns a Codec with DefaultOptions and no logging.
func Default() *Codec {
	return New(DefaultOptions())
}

// Options returns the codec's configuration.
func (c *Codec) Options() Options {
	return c.opts
}

// finish logs and records the outcome of an operation.
func (c *Codec) finish(operation string, start time.Time, res *Result, err error) {
	elapsed := time.Since(start)
	var in, out int64
	if res != nil {
		res.Duration = elapsed
		in, out = res.BytesIn, res.BytesOut
	}
	if c.metrics != nil {
		c.metrics.RecordArchive(operation, err, in, out, elapsed.Seconds())
	}
	if err != nil {
		c.log.Debug(operation+" failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return
	}
	c.log.Debug(operation+" complete",
		zap.Int64("bytes_in", in),
		zap.Int64("bytes_out", out),
		zap.Duration("elapsed", elapsed),
	)
}
