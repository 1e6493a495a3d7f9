package archive

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"docutil/pkg/core"
	"docutil/pkg/progress"
)

// maxDeflateRatio is the largest expansion DEFLATE can produce. A gzip
// size trailer claiming more than this is ignored as a sizing hint.
const maxDeflateRatio = 1032

// gzipTrailerSize is the CRC32 plus ISIZE trailer of a gzip member.
const gzipTrailerSize = 8

// DecompressFile restores the archive at input into output. The archive
// format is detected from its signature.
func (c *Codec) DecompressFile(input, output string) (res *Result, err error) {
	start := time.Now()
	defer func() { c.finish("decompress", start, res, err) }()

	info, err := statSource(input)
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, core.NewError(core.ErrFileUnreadable, "archive is empty").With("path", input)
	}

	f, retries, err := c.openArchive(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, format, err := c.readPayload(f, input, info.Size())
	if err != nil {
		return nil, err
	}

	if err := c.writeDestination(output, data); err != nil {
		return nil, err
	}
	if err := c.waitReadable(output); err != nil {
		return nil, err
	}

	return &Result{
		Format:   format,
		BytesIn:  info.Size(),
		BytesOut: int64(len(data)),
		Retries:  retries,
	}, nil
}

// openArchive opens path, retrying sharing violations per the codec's
// RetryPolicy. Allocation failures are never retried.
func (c *Codec) openArchive(path string) (*os.File, int, error) {
	retries := 0
	for {
		f, err := c.open(path)
		if err == nil {
			if retries > 0 {
				c.log.Info("archive opened after retries",
					zap.String("path", path),
					zap.Int("retries", retries),
				)
			}
			return f, retries, nil
		}

		switch {
		case isOutOfMemory(err):
			return nil, retries, core.WrapError(core.ErrInsufficientMemory, err).
				With("path", path).
				With("retries", retries)
		case !isSharingViolation(err):
			return nil, retries, core.WrapError(core.ErrArchiveOpenFailed, err).With("path", path)
		case retries >= c.opts.Retry.Count:
			e := core.WrapError(core.ErrArchiveOpenFailed, err)
			e.Message = fmt.Sprintf("unable to open archive after %d retries", retries)
			return nil, retries, e.With("path", path).With("retries", retries)
		}

		retries++
		c.log.Warn("archive locked, retrying",
			zap.String("path", path),
			zap.Int("attempt", retries),
			zap.Int("max_retries", c.opts.Retry.Count),
			zap.Duration("delay", c.opts.Retry.Delay),
		)
		if c.metrics != nil {
			c.metrics.RecordOpenRetry()
		}
		c.sleep(c.opts.Retry.Delay)
	}
}

// readPayload detects the container format and decompresses the whole
// payload into memory.
func (c *Codec) readPayload(f *os.File, path string, size int64) ([]byte, Format, error) {
	br := bufio.NewReader(f)
	header, _ := br.Peek(len(lz4FrameSignature))
	format, ok := formatFromHeader(header)
	if !ok {
		return nil, 0, core.NewError(core.ErrDecompressionFailed, "unrecognized archive signature").
			With("path", path).
			With("header", fmt.Sprintf("% x", header))
	}

	var hint int64
	if format == FormatGzip {
		hint = gzipSizeHint(f, size)
	}
	if limit := c.opts.MaxBufferBytes; limit > 0 && hint > limit {
		return nil, 0, core.NewError(core.ErrInsufficientMemory, "decompressed size exceeds in-memory buffer limit").
			With("path", path).
			With("size", hint).
			With("limit", limit)
	}

	dec, err := newDecoder(br, format)
	if err != nil {
		return nil, 0, classify(core.ErrDecompressionFailed, err, path)
	}
	defer dec.Close()

	tracker := progress.New(c.log, "decompress", uint64(hint))
	tracker.Start()
	data, err := readAll(&trackingReader{r: dec, tracker: tracker}, hint, c.opts.MaxBufferBytes)
	tracker.Stop()
	if err != nil {
		e := classify(core.ErrDecompressionFailed, err, path).With("format", format.String())
		if errors.Is(err, errBufferLimit) {
			e.With("limit", c.opts.MaxBufferBytes)
		}
		return nil, 0, e
	}
	return data, format, nil
}

// gzipSizeHint reads the ISIZE trailer, the uncompressed length modulo
// 2^32 of the last member. Implausible values yield 0.
func gzipSizeHint(f *os.File, size int64) int64 {
	if size < int64(len(gzipSignature))+gzipTrailerSize {
		return 0
	}
	var trailer [4]byte
	if _, err := f.ReadAt(trailer[:], size-4); err != nil {
		return 0
	}
	hint := int64(binary.LittleEndian.Uint32(trailer[:]))
	if hint > size*maxDeflateRatio {
		return 0
	}
	return hint
}

// writeDestination writes the decompressed bytes to path. A partially
// written destination is removed.
func (c *Codec) writeDestination(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return classify(core.ErrDestinationWriteFailed, fmt.Errorf("create destination directory: %w", err), path)
		}
	}

	f, err := c.create(path)
	if err != nil {
		return classify(core.ErrDestinationWriteFailed, fmt.Errorf("create destination: %w", err), path)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return classify(core.ErrDestinationWriteFailed, fmt.Errorf("write destination: %w", err), path).With("size", len(data))
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return classify(core.ErrDestinationWriteFailed, fmt.Errorf("close destination: %w", err), path)
	}
	return nil
}

type trackingReader struct {
	r       io.Reader
	tracker *progress.Tracker
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.tracker.AddBytes(uint64(n))
	}
	return n, err
}
