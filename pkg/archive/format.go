package archive

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format identifies the container written by CompressFile. Decompression
// detects the format from the file signature, so the writer's choice
// never has to be passed back in.
type Format uint8

const (
	// FormatGzip is a single-member gzip stream, readable by any
	// standard gzip tool. This is the default.
	FormatGzip Format = iota

	// FormatLZ4 is an LZ4 frame. Faster, lower ratio.
	FormatLZ4

	// FormatZstd is a zstd frame.
	FormatZstd
)

// Container signatures, as they appear at offset 0.
var (
	zipLocalHeaderSignature  = []byte{'P', 'K', 0x03, 0x04}
	zipEmptyArchiveSignature = []byte{'P', 'K', 0x05, 0x06}
	gzipSignature            = []byte{0x1f, 0x8b}
	lz4FrameSignature        = []byte{0x04, 0x22, 0x4d, 0x18}
	zstdFrameSignature       = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// String returns the human-readable name of a format.
func (f Format) String() string {
	switch f {
	case FormatGzip:
		return "gzip"
	case FormatLZ4:
		return "lz4"
	case FormatZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", f)
	}
}

// Extension returns the conventional file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatLZ4:
		return ".lz4"
	case FormatZstd:
		return ".zst"
	default:
		return ".gz"
	}
}

// ParseFormat parses a format from its string representation.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "gzip", "gz":
		return FormatGzip, nil
	case "lz4":
		return FormatLZ4, nil
	case "zstd", "zst":
		return FormatZstd, nil
	default:
		return 0, fmt.Errorf("unknown archive format: %q", name)
	}
}

// formatFromHeader matches the leading bytes of a file against the
// supported container signatures.
func formatFromHeader(header []byte) (Format, bool) {
	switch {
	case bytes.HasPrefix(header, gzipSignature):
		return FormatGzip, true
	case bytes.HasPrefix(header, lz4FrameSignature):
		return FormatLZ4, true
	case bytes.HasPrefix(header, zstdFrameSignature):
		return FormatZstd, true
	default:
		return 0, false
	}
}

// entryInfo describes the source file recorded in the gzip header.
type entryInfo struct {
	name    string
	modTime time.Time
}

// newEncoder wraps w in a compressing writer for the format. level is
// only honoured by gzip and zstd; -1 selects the library default.
func newEncoder(w io.Writer, f Format, level int, entry entryInfo) (io.WriteCloser, error) {
	switch f {
	case FormatGzip:
		zw, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, fmt.Errorf("gzip writer: %w", err)
		}
		zw.Name = entry.name
		zw.ModTime = entry.modTime
		return zw, nil

	case FormatLZ4:
		return lz4.NewWriter(w), nil

	case FormatZstd:
		encLevel := zstd.SpeedDefault
		if level >= 0 {
			encLevel = zstd.EncoderLevelFromZstd(level)
		}
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(encLevel))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return zw, nil

	default:
		return nil, fmt.Errorf("unsupported archive format: %s", f)
	}
}

// newDecoder wraps r in a decompressing reader for the format.
func newDecoder(r io.Reader, f Format) (io.ReadCloser, error) {
	switch f {
	case FormatGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return zr, nil

	case FormatLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil

	case FormatZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil

	default:
		return nil, fmt.Errorf("unsupported archive format: %s", f)
	}
}
