package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"docutil/pkg/archive"
	"docutil/pkg/core"
)

// EnvPrefix prefixes environment overrides, e.g. DOCUTIL_ARCHIVE_RETRY_COUNT.
const EnvPrefix = "DOCUTIL"

type Config struct {
	Archive ArchiveConfig `mapstructure:"archive"`
	Log     LogConfig     `mapstructure:"log"`
}

// ArchiveConfig holds codec settings.
type ArchiveConfig struct {
	RetryCount           int           `mapstructure:"retry_count"`
	RetryDelay           time.Duration `mapstructure:"retry_delay"`
	Format               string        `mapstructure:"format"` // "gzip", "lz4" or "zstd"
	Level                int           `mapstructure:"level"`  // -1 for the library default
	MaxBufferBytes       int64         `mapstructure:"max_buffer_bytes"`
	ReadableTimeout      time.Duration `mapstructure:"readable_timeout"`
	ReadablePollInterval time.Duration `mapstructure:"readable_poll_interval"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// Load reads configuration from file. Keys missing from the file keep
// their Defaults value.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("config path is empty"))
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	return unmarshal(v)
}

// FromEnv builds a config from Defaults and DOCUTIL_* environment
// overrides, without a file.
func FromEnv() (*Config, error) {
	return unmarshal(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys the
// file leaves out.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("archive.retry_count", d.Archive.RetryCount)
	v.SetDefault("archive.retry_delay", d.Archive.RetryDelay)
	v.SetDefault("archive.format", d.Archive.Format)
	v.SetDefault("archive.level", d.Archive.Level)
	v.SetDefault("archive.max_buffer_bytes", d.Archive.MaxBufferBytes)
	v.SetDefault("archive.readable_timeout", d.Archive.ReadableTimeout)
	v.SetDefault("archive.readable_poll_interval", d.Archive.ReadablePollInterval)
	v.SetDefault("log.development", d.Log.Development)
}

// Defaults returns a config matching archive.DefaultOptions.
func Defaults() *Config {
	opts := archive.DefaultOptions()
	return &Config{
		Archive: ArchiveConfig{
			RetryCount:           opts.Retry.Count,
			RetryDelay:           opts.Retry.Delay,
			Format:               opts.Format.String(),
			Level:                opts.Level,
			MaxBufferBytes:       opts.MaxBufferBytes,
			ReadableTimeout:      opts.ReadableTimeout,
			ReadablePollInterval: opts.ReadablePollInterval,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	a := c.Archive
	if a.RetryCount < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("retry_count cannot be negative, got %d", a.RetryCount))
	}
	if a.RetryDelay < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("retry_delay cannot be negative, got %s", a.RetryDelay))
	}
	if _, err := archive.ParseFormat(a.Format); err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}
	if a.Level < -1 || a.Level > 22 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("level must be between -1 and 22, got %d", a.Level))
	}
	if a.Format != "zstd" && a.Format != "zst" && a.Level > 9 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("level above 9 is only valid for zstd, got %d", a.Level))
	}
	if a.MaxBufferBytes < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_buffer_bytes cannot be negative, got %d", a.MaxBufferBytes))
	}
	if a.ReadableTimeout < 0 || a.ReadablePollInterval < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("readable_timeout and readable_poll_interval cannot be negative"))
	}
	if a.ReadableTimeout > 0 && a.ReadablePollInterval == 0 {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("readable_poll_interval required when readable_timeout is set"))
	}
	return nil
}

// Options converts the archive section into codec options.
func (a *ArchiveConfig) Options() (archive.Options, error) {
	format, err := archive.ParseFormat(a.Format)
	if err != nil {
		return archive.Options{}, core.WrapError(core.ErrConfigInvalid, err)
	}
	return archive.Options{
		Retry: archive.RetryPolicy{
			Count: a.RetryCount,
			Delay: a.RetryDelay,
		},
		Format:               format,
		Level:                a.Level,
		MaxBufferBytes:       a.MaxBufferBytes,
		ReadableTimeout:      a.ReadableTimeout,
		ReadablePollInterval: a.ReadablePollInterval,
	}, nil
}
