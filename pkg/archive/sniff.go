package archive

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	"docutil/pkg/core"
)

// IsZipFile reports whether path starts with a ZIP local file header or
// the end-of-central-directory record of an empty archive. Files shorter
// than four bytes are not ZIP files.
func IsZipFile(path string) (bool, error) {
	prefix, err := readPrefix(path, len(zipLocalHeaderSignature))
	if err != nil {
		return false, err
	}
	return bytes.Equal(prefix, zipLocalHeaderSignature) || bytes.Equal(prefix, zipEmptyArchiveSignature), nil
}

// IsGZipFile reports whether path starts with the gzip magic bytes.
func IsGZipFile(path string) (bool, error) {
	return hasSignature(path, gzipSignature)
}

// IsLZ4File reports whether path starts with an LZ4 frame magic number.
func IsLZ4File(path string) (bool, error) {
	return hasSignature(path, lz4FrameSignature)
}

// IsZstdFile reports whether path starts with a zstd frame magic number.
func IsZstdFile(path string) (bool, error) {
	return hasSignature(path, zstdFrameSignature)
}

// DetectFormat returns the container format of path, if it is one that
// DecompressFile understands.
func DetectFormat(path string) (Format, bool, error) {
	prefix, err := readPrefix(path, len(lz4FrameSignature))
	if err != nil {
		return 0, false, err
	}
	f, ok := formatFromHeader(prefix)
	return f, ok, nil
}

func hasSignature(path string, signature []byte) (bool, error) {
	prefix, err := readPrefix(path, len(signature))
	if err != nil {
		return false, err
	}
	return bytes.Equal(prefix, signature), nil
}

// readPrefix returns up to n leading bytes of path. A short file yields
// a short prefix rather than an error.
func readPrefix(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.WrapError(core.ErrFileNotFound, err).With("path", path)
		}
		return nil, core.WrapError(core.ErrFileUnreadable, err).With("path", path)
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, core.WrapError(core.ErrFileUnreadable, err).With("path", path)
	}
	return buf[:read], nil
}
