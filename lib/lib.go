// Package lib provides range expansion, compression and decompression
// behind plain functions. It re-exports the pkg/ packages so callers
// only import one path.
package lib

import (
	"docutil/pkg/archive"
	"docutil/pkg/rangespec"
)

// Format re-exported from archive
type Format = archive.Format

// Re-export archive formats
const (
	FormatGzip = archive.FormatGzip
	FormatLZ4  = archive.FormatLZ4
	FormatZstd = archive.FormatZstd
)

// Result re-exported from archive
type Result = archive.Result

// Token re-exported from rangespec
type Token = rangespec.Token

// GetNumbers is a wrapper around rangespec.GetNumbers
func GetNumbers(totalSize int, spec string) ([]int, error) {
	return rangespec.GetNumbers(totalSize, spec)
}

// CompressFile compresses input to output with the default options
func CompressFile(input, output string) error {
	_, err := archive.Default().CompressFile(input, output)
	return err
}

// DecompressFile restores output from the archive at input with the
// default options
func DecompressFile(input, output string) error {
	_, err := archive.Default().DecompressFile(input, output)
	return err
}

// IsZipFile is a wrapper around archive.IsZipFile
func IsZipFile(path string) (bool, error) {
	return archive.IsZipFile(path)
}

// IsGZipFile is a wrapper around archive.IsGZipFile
func IsGZipFile(path string) (bool, error) {
	return archive.IsGZipFile(path)
}
