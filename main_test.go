package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docutil/pkg/archive"
	"docutil/pkg/core"
)

// execute runs the root command with fresh flag state.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, debug, metricsFile, rangeCount = "", false, "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCompressOutputPath(t *testing.T) {
	assert.Equal(t, "doc.pdf.gz", compressOutputPath([]string{"doc.pdf"}, archive.FormatGzip))
	assert.Equal(t, "doc.pdf.zst", compressOutputPath([]string{"doc.pdf"}, archive.FormatZstd))
	assert.Equal(t, "custom.bin", compressOutputPath([]string{"doc.pdf", "custom.bin"}, archive.FormatLZ4))
}

func TestDecompressOutputPath(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"doc.pdf.gz"}, "doc.pdf"},
		{[]string{"doc.pdf.GZ"}, "doc.pdf"},
		{[]string{"doc.pdf.lz4"}, "doc.pdf"},
		{[]string{"doc.pdf.zst"}, "doc.pdf"},
		{[]string{"doc.pdf"}, "doc.pdf.out"},
		{[]string{".gz"}, ".gz.out"},
		{[]string{"doc.gz", "restored.pdf"}, "restored.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			assert.Equal(t, tt.want, decompressOutputPath(tt.args))
		})
	}
}

func TestRangeCommand(t *testing.T) {
	out, err := execute(t, "range", "10", "1..3,7")
	require.NoError(t, err)
	assert.Equal(t, "1,2,3,7\n", out)

	out, err = execute(t, "range", "--", "10", "-3..")
	require.NoError(t, err)
	assert.Equal(t, "8,9,10\n", out)

	out, err = execute(t, "range", "--count", "10", "1..")
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)

	_, err = execute(t, "range", "10", "..")
	assert.ErrorIs(t, err, core.ErrInvalidRangeSpec)

	_, err = execute(t, "range", "10", "0")
	assert.ErrorIs(t, err, core.ErrInvalidRangeSpec)

	_, err = execute(t, "range", "ten", "1")
	assert.Error(t, err)
}

func TestCompressDecompressCommands(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "report.txt")
	data := bytes.Repeat([]byte("quarterly numbers\n"), 1000)
	require.NoError(t, os.WriteFile(input, data, 0644))

	metricsPath := filepath.Join(dir, "docutil.prom")
	_, err := execute(t, "compress", input, "--metrics-file", metricsPath)
	require.NoError(t, err)

	isGzip, err := archive.IsGZipFile(input + ".gz")
	require.NoError(t, err)
	assert.True(t, isGzip)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "docutil_archive_operations_total")

	require.NoError(t, os.Remove(input))
	_, err = execute(t, "decompress", input+".gz")
	require.NoError(t, err)

	got, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	out, err := execute(t, "sniff", input+".gz")
	require.NoError(t, err)
	assert.Contains(t, out, "format: gzip")
	assert.Contains(t, out, "gzip:   true")
}

func TestCompressCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("archive:\n  format: zstd\n"), 0644))

	input := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(input, []byte("zstd via config"), 0644))

	_, err := execute(t, "compress", "-c", cfgPath, input)
	require.NoError(t, err)

	isZstd, err := archive.IsZstdFile(input + ".zst")
	require.NoError(t, err)
	assert.True(t, isZstd)
}

func TestCompressCommand_EnvWithoutConfigFile(t *testing.T) {
	t.Setenv("DOCUTIL_ARCHIVE_FORMAT", "lz4")

	input := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(input, []byte("lz4 via environment"), 0644))

	_, err := execute(t, "compress", input)
	require.NoError(t, err)

	isLZ4, err := archive.IsLZ4File(input + ".lz4")
	require.NoError(t, err)
	assert.True(t, isLZ4)
}

func TestCompressCommand_MissingInput(t *testing.T) {
	_, err := execute(t, "compress", filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, core.ErrFileNotFound)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "docutil dev")
}
