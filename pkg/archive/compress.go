package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"docutil/pkg/core"
	"docutil/pkg/progress"
)

// CompressFile compresses input into a single-record archive at output,
// in the codec's configured Format.
func (c *Codec) CompressFile(input, output string) (res *Result, err error) {
	start := time.Now()
	defer func() { c.finish("compress", start, res, err) }()

	info, err := statSource(input)
	if err != nil {
		return nil, err
	}
	if limit := c.opts.MaxBufferBytes; limit > 0 && info.Size() > limit {
		return nil, core.NewError(core.ErrInsufficientMemory, "input exceeds in-memory buffer limit").
			With("path", input).
			With("size", info.Size()).
			With("limit", limit)
	}

	c.log.Debug("compressing",
		zap.String("input", input),
		zap.String("output", output),
		zap.Stringer("format", c.opts.Format),
		zap.Int64("size", info.Size()),
	)

	data, err := c.readSource(input, info.Size())
	if err != nil {
		return nil, err
	}

	tracker := progress.New(c.log, "compress", uint64(len(data)))
	tracker.Start()
	written, err := c.writeArchive(output, data, info, tracker)
	tracker.Stop()
	if err != nil {
		return nil, err
	}

	if err := c.waitReadable(output); err != nil {
		return nil, err
	}

	return &Result{
		Format:   c.opts.Format,
		BytesIn:  int64(len(data)),
		BytesOut: written,
	}, nil
}

// readSource loads the whole input file.
func (c *Codec) readSource(path string, size int64) ([]byte, error) {
	f, err := c.open(path)
	if err != nil {
		return nil, classify(core.ErrFileUnreadable, err, path)
	}
	defer f.Close()

	data, err := readAll(f, size, c.opts.MaxBufferBytes)
	if err != nil {
		return nil, classify(core.ErrFileUnreadable, err, path).With("size", size)
	}
	return data, nil
}

// writeArchive writes data as one compressed record and returns the
// archive size. A partially written archive is removed.
func (c *Codec) writeArchive(output string, data []byte, src os.FileInfo, tracker *progress.Tracker) (int64, error) {
	// Clean up existing output file
	if _, err := os.Stat(output); err == nil {
		if err := os.Remove(output); err != nil {
			return 0, classify(core.ErrArchiveWriteFailed, fmt.Errorf("remove existing output: %w", err), output)
		}
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return 0, classify(core.ErrArchiveWriteFailed, fmt.Errorf("create output directory: %w", err), output)
	}

	f, err := c.create(output)
	if err != nil {
		return 0, classify(core.ErrArchiveWriteFailed, fmt.Errorf("create output: %w", err), output)
	}

	fail := func(err error) (int64, error) {
		f.Close()
		os.Remove(output)
		return 0, classify(core.ErrArchiveWriteFailed, err, output)
	}

	enc, err := newEncoder(f, c.opts.Format, c.opts.Level, entryInfo{
		name:    filepath.Base(src.Name()),
		modTime: src.ModTime(),
	})
	if err != nil {
		return fail(err)
	}

	pw := &progress.Writer{W: enc, Tracker: tracker}
	if _, err := pw.Write(data); err != nil {
		enc.Close()
		return fail(fmt.Errorf("write compressed data: %w", err))
	}
	if err := enc.Close(); err != nil {
		return fail(fmt.Errorf("close %s writer: %w", c.opts.Format, err))
	}
	if err := f.Sync(); err != nil {
		return fail(fmt.Errorf("sync output: %w", err))
	}

	info, err := f.Stat()
	if err != nil {
		return fail(fmt.Errorf("stat output: %w", err))
	}
	if err := f.Close(); err != nil {
		os.Remove(output)
		return 0, classify(core.ErrArchiveWriteFailed, fmt.Errorf("close output: %w", err), output)
	}
	return info.Size(), nil
}
