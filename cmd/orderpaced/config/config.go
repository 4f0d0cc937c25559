// Package config provides configuration management for the orderpace daemon.
//
// Values are layered the same way for every setting, highest priority first:
//
//   - Command line flags that were explicitly set
//   - Environment variables with the ORDERPACE_ prefix (ORDERPACE_STORE_URL)
//   - The optional orderpace.yaml file (or the file named by --config)
//   - Flag defaults and the built-in defaults below
//
// Store credentials never have a built-in value. When neither a flag, the
// environment nor the file provides them, every submission must carry its own
// store_url and access_token.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	configDefaults "github.com/concave-dev/orderpace/internal/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// DefaultAPI is the default HTTP API listen address
	DefaultAPI = configDefaults.DefaultBindAddr + ":8009"

	DefaultDataDir  = configDefaults.DefaultDataDir  // Default artifact directory
	DefaultLogLevel = configDefaults.DefaultLogLevel // Default log level

	// DefaultMaxUploadMB bounds the size of an uploaded CSV
	DefaultMaxUploadMB = 32

	// DefaultShutdownTimeout bounds how long in-flight store calls may delay exit
	DefaultShutdownTimeout = 30 * time.Second

	// ConfigFileName is looked up in the working directory when --config is not set
	ConfigFileName = "orderpace"
)

// Config holds all daemon configuration values
type Config struct {
	APIAddr string `mapstructure:"api" validate:"required"`
	APIHost string `mapstructure:"-"` // Derived from APIAddr
	APIPort int    `mapstructure:"-"` // Derived from APIAddr

	DataDir string `mapstructure:"data_dir" validate:"required"`

	Concurrency     int           `mapstructure:"concurrency" validate:"min=1,max=64"`
	BatchWorkers    int           `mapstructure:"batch_workers" validate:"min=1,max=64"`
	QueueSize       int           `mapstructure:"queue_size" validate:"min=1,max=10000"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s"`
	MaxUploadMB     int           `mapstructure:"max_upload_mb" validate:"min=1,max=1024"`
	UserAgent       string        `mapstructure:"user_agent"`

	// Submission defaults
	StoreURL    string `mapstructure:"store_url" validate:"omitempty,store"`
	AccessToken string `mapstructure:"access_token"`
	VariantID   string `mapstructure:"variant_id" validate:"omitempty,variant_id"`

	LogLevel string `mapstructure:"log_level" validate:"oneof=DEBUG INFO WARN ERROR"`
	LogFile  string `mapstructure:"log_file"`

	// ConfigFile is the file values were read from, empty when none was found
	ConfigFile string `mapstructure:"-"`
}

// Global configuration instance
var Global Config

// flagKeys maps command line flag names to configuration keys
var flagKeys = map[string]string{
	"api":           "api",
	"data-dir":      "data_dir",
	"concurrency":   "concurrency",
	"batch-workers": "batch_workers",
	"queue-size":    "queue_size",
	"store":         "store_url",
	"token":         "access_token",
	"variant":       "variant_id",
	"log-level":     "log_level",
	"log-file":      "log_file",
}

// Load builds the daemon configuration from flags, environment and the optional
// config file. A missing default config file is not an error; a missing file
// named explicitly is.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api", DefaultAPI)
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("concurrency", configDefaults.DefaultConcurrency)
	v.SetDefault("batch_workers", configDefaults.DefaultBatchWorkers)
	v.SetDefault("queue_size", configDefaults.DefaultQueueSize)
	v.SetDefault("request_timeout", configDefaults.DefaultRequestTimeout)
	v.SetDefault("shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("max_upload_mb", DefaultMaxUploadMB)
	v.SetDefault("log_level", DefaultLogLevel)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(configDefaults.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for flagName, key := range flagKeys {
			if f := flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", flagName, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)

	return cfg, nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
