// Package config loads engine and server settings from defaults, an optional YAML file and
// COMPOSER_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "COMPOSER"

	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultPort           = 8080
	DefaultBackend        = "cli"
	DefaultBinary         = "kompose"
	DefaultTimeout        = 60 * time.Second
	DefaultWorkers        = 4
	DefaultCacheTTL       = 10 * time.Minute
	DefaultComposeVersion = "3"
)

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
	// InstanceIDFile persists the instance ID across restarts; empty keeps it in memory
	InstanceIDFile string `mapstructure:"instanceIDFile"`
	PublicURL      string `mapstructure:"publicURL"`
}

type KomposeConfig struct {
	Backend    string        `mapstructure:"backend" validate:"oneof=cli library"`
	Binary     string        `mapstructure:"binary" validate:"required"`
	Namespace  string        `mapstructure:"namespace"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"min=0"`
	Workers    int           `mapstructure:"workers" validate:"min=1"`
	CacheTTL   time.Duration `mapstructure:"cacheTTL" validate:"min=0"`
	CacheFile  string        `mapstructure:"cacheFile"`
	AccessMode string        `mapstructure:"accessMode" validate:"omitempty,oneof=ReadWriteOnce ReadOnlyMany ReadWriteMany ReadWriteOncePod"`
}

type ComposeConfig struct {
	DefaultVersion string `mapstructure:"defaultVersion"`
}

// Config is the full configuration
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
	Kompose KomposeConfig `mapstructure:"kompose"`
	Compose ComposeConfig `mapstructure:"compose"`
}

// CacheEnabled reports whether conversion results are cached
func (k KomposeConfig) CacheEnabled() bool {
	return k.CacheTTL > 0
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.instanceIDFile", "")
	v.SetDefault("server.publicURL", "")
	v.SetDefault("kompose.backend", DefaultBackend)
	v.SetDefault("kompose.binary", DefaultBinary)
	v.SetDefault("kompose.namespace", "")
	v.SetDefault("kompose.timeout", DefaultTimeout)
	v.SetDefault("kompose.workers", DefaultWorkers)
	v.SetDefault("kompose.cacheTTL", DefaultCacheTTL)
	v.SetDefault("kompose.cacheFile", "")
	v.SetDefault("kompose.accessMode", "")
	v.SetDefault("compose.defaultVersion", DefaultComposeVersion)
}

// LoadConfig reads path (skipped when empty) on top of the defaults. Environment variables
// use the COMPOSER_ prefix with dots replaced by underscores, e.g. COMPOSER_KOMPOSE_BACKEND.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
