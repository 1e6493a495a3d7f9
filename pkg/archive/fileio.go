package archive

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"docutil/pkg/core"
)

// statSource checks that a source file exists and is a regular file.
func statSource(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.WrapError(core.ErrFileNotFound, err).With("path", path)
		}
		return nil, core.WrapError(core.ErrFileUnreadable, err).With("path", path)
	}
	if info.IsDir() {
		return nil, core.NewError(core.ErrFileUnreadable, "path is a directory").With("path", path)
	}
	return info, nil
}

// classify maps err to INSUFFICIENT_MEMORY when it is an allocation
// failure, and to fallback otherwise.
func classify(fallback *core.Error, err error, path string) *core.Error {
	if isOutOfMemory(err) {
		return core.WrapError(core.ErrInsufficientMemory, err).With("path", path)
	}
	return core.WrapError(fallback, err).With("path", path)
}

// maxPrealloc caps the up-front allocation. Size hints come from
// unverified archive trailers; beyond this the buffer grows as data
// actually arrives.
const maxPrealloc = 64 << 20

// readAll reads r into a single buffer presized to sizeHint. When limit
// is positive, reading more than limit bytes fails with errBufferLimit.
// A buffer that cannot grow surfaces as bytes.ErrTooLarge.
func readAll(r io.Reader, sizeHint, limit int64) (data []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok && errors.Is(e, bytes.ErrTooLarge) {
				data, err = nil, e
				return
			}
			panic(p)
		}
	}()

	var buf bytes.Buffer
	if sizeHint > 0 {
		buf.Grow(int(min(sizeHint, maxPrealloc)))
	}
	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := buf.ReadFrom(src)
	if err != nil {
		return nil, err
	}
	if limit > 0 && n > limit {
		return nil, errBufferLimit
	}
	return buf.Bytes(), nil
}

// waitReadable polls until path can be opened for reading. Virus
// scanners and indexers commonly hold a freshly written file briefly.
func (c *Codec) waitReadable(path string) error {
	attempts := 1
	if c.opts.ReadablePollInterval > 0 && c.opts.ReadableTimeout > 0 {
		attempts += int(c.opts.ReadableTimeout / c.opts.ReadablePollInterval)
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			c.sleep(c.opts.ReadablePollInterval)
		}
		f, err := c.open(path)
		if err == nil {
			f.Close()
			if i > 0 {
				c.log.Debug("output readable after polling", zap.String("path", path), zap.Int("polls", i))
			}
			return nil
		}
		lastErr = err
	}
	return core.WrapError(core.ErrOutputNotReadable, lastErr).
		With("path", path).
		With("timeout", c.opts.ReadableTimeout)
}
