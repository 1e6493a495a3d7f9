package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docutil/pkg/archive"
	"docutil/pkg/progress"
)

var compressCmd = &cobra.Command{
	Use:   "compress <input> [output]",
	Short: "Compress a single file",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCompress,
}

var decompressCmd = &cobra.Command{
	Use:   "decompress <input> [output]",
	Short: "Restore a file from a gzip, lz4 or zstd archive",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDecompress,
}

var sniffCmd = &cobra.Command{
	Use:   "sniff <path>",
	Short: "Report the container format of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSniff,
}

func init() {
	rootCmd.AddCommand(compressCmd, decompressCmd, sniffCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	codec, err := e.codec()
	if err != nil {
		return err
	}

	input := args[0]
	output := compressOutputPath(args, codec.Options().Format)

	res, err := codec.CompressFile(input, output)
	if err != nil {
		return err
	}

	e.log.Info("compressed",
		zap.String("input", input),
		zap.String("output", output),
		zap.Stringer("format", res.Format),
		zap.Duration("elapsed", res.Duration),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s, %s -> %s)\n",
		input, output, res.Format,
		progress.FormatSize(uint64(res.BytesIn)),
		progress.FormatSize(uint64(res.BytesOut)),
	)
	return nil
}

// compressOutputPath uses the explicit output when given, otherwise the
// input name plus the format's extension.
func compressOutputPath(args []string, format archive.Format) string {
	if len(args) == 2 {
		return args[1]
	}
	return args[0] + format.Extension()
}

func runDecompress(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	codec, err := e.codec()
	if err != nil {
		return err
	}

	input := args[0]
	output := decompressOutputPath(args)

	res, err := codec.DecompressFile(input, output)
	if err != nil {
		return err
	}

	e.log.Info("decompressed",
		zap.String("input", input),
		zap.String("output", output),
		zap.Stringer("format", res.Format),
		zap.Int("retries", res.Retries),
		zap.Duration("elapsed", res.Duration),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s, %s)\n",
		input, output, res.Format, progress.FormatSize(uint64(res.BytesOut)))
	return nil
}

// decompressOutputPath uses the explicit output when given. Otherwise it
// strips a known archive extension, or appends ".out" when there is none.
func decompressOutputPath(args []string) string {
	if len(args) == 2 {
		return args[1]
	}
	input := args[0]
	ext := strings.ToLower(filepath.Ext(input))
	for _, f := range []archive.Format{archive.FormatGzip, archive.FormatLZ4, archive.FormatZstd} {
		if ext == f.Extension() && len(input) > len(ext) {
			return input[:len(input)-len(ext)]
		}
	}
	return input + ".out"
}

func runSniff(cmd *cobra.Command, args []string) error {
	path := args[0]

	isZip, err := archive.IsZipFile(path)
	if err != nil {
		return err
	}
	isGzip, err := archive.IsGZipFile(path)
	if err != nil {
		return err
	}
	format, ok, err := archive.DetectFormat(path)
	if err != nil {
		return err
	}

	detected := "none"
	if ok {
		detected = format.String()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "path:   %s\n", path)
	fmt.Fprintf(out, "format: %s\n", detected)
	fmt.Fprintf(out, "zip:    %t\n", isZip)
	fmt.Fprintf(out, "gzip:   %t\n", isGzip)
	return nil
}
