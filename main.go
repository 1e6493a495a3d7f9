package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docutil/pkg/archive"
	"docutil/pkg/config"
	"docutil/pkg/logger"
	"docutil/pkg/metrics"
)

var (
	cfgFile     string
	debug       bool
	metricsFile string
)

var rootCmd = &cobra.Command{
	Use:   "docutil",
	Short: "docutil - range expressions and single-file archives",
	Long: `docutil expands page range expressions such as "1..3,-1" and compresses
or restores single files as gzip, lz4 or zstd archives.

Settings come from --config and DOCUTIL_* environment variables, e.g.
DOCUTIL_ARCHIVE_RETRY_COUNT. Without --config the environment overrides
the built-in defaults.

Range specs that start with "-" must follow a "--" separator.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write metrics in textfile-collector format to this path")
}

// env is what every command needs: a logger, the validated config and
// the metrics registry.
type env struct {
	log     *zap.Logger
	cfg     *config.Config
	metrics *metrics.Registry
}

func setup() (*env, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg, err = config.FromEnv()
		if err != nil {
			return nil, fmt.Errorf("loading config from environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log := logger.Must(debug || cfg.Log.Development)
	if cfgFile == "" {
		log.Debug("no config file specified, using defaults and DOCUTIL_* environment")
	}

	return &env{
		log:     log,
		cfg:     cfg,
		metrics: metrics.NewRegistry(),
	}, nil
}

// codec builds an archive codec from the loaded config.
func (e *env) codec() (*archive.Codec, error) {
	opts, err := e.cfg.Archive.Options()
	if err != nil {
		return nil, err
	}
	return archive.New(opts,
		archive.WithLogger(e.log),
		archive.WithMetrics(e.metrics),
	), nil
}

// close flushes the logger and writes metrics when --metrics-file is set.
func (e *env) close() {
	if metricsFile != "" {
		if err := e.metrics.WriteTextfile(metricsFile); err != nil {
			e.log.Error("failed to write metrics", zap.String("path", metricsFile), zap.Error(err))
		}
	}
	_ = e.log.Sync()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
