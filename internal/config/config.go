package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ConfigFileEnv names an optional config file. Environment variables take
// precedence over values in the file.
const ConfigFileEnv = "FIELDSURVEY_CONFIG"

type Config struct {
	ListenAddr         string `mapstructure:"listen_addr"`
	DBPath             string `mapstructure:"db_path"`
	PhotoBackend       string `mapstructure:"photo_backend"`
	PhotoPath          string `mapstructure:"photo_local_path"`
	PhotoDelivery      string `mapstructure:"photo_delivery"`
	PhotoStaticPrefix  string `mapstructure:"photo_static_prefix"`
	PhotoPublicBaseURL string `mapstructure:"photo_public_base_url"`
	S3Bucket           string `mapstructure:"s3_bucket"`
	S3Prefix           string `mapstructure:"s3_prefix"`
	S3Region           string `mapstructure:"s3_region"`
	S3Endpoint         string `mapstructure:"s3_endpoint"`
	LogLevel           string `mapstructure:"log_level"`
	LogFile            string `mapstructure:"log_file"`
}

var defaults = map[string]any{
	"listen_addr":           ":8080",
	"db_path":               "/data/fieldsurvey.db",
	"photo_backend":         "local",
	"photo_local_path":      "/data/photos",
	"photo_delivery":        "static",
	"photo_static_prefix":   "/files",
	"photo_public_base_url": "",
	"s3_bucket":             "",
	"s3_prefix":             "",
	"s3_region":             "",
	"s3_endpoint":           "",
	"log_level":             "info",
	"log_file":              "",
}

func Load() (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.PhotoBackend {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when PHOTO_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown PHOTO_BACKEND %q", c.PhotoBackend)
	}

	switch c.PhotoDelivery {
	case "static", "embedded":
	case "remote":
		if c.PhotoPublicBaseURL == "" {
			return fmt.Errorf("PHOTO_PUBLIC_BASE_URL is required when PHOTO_DELIVERY=remote")
		}
	default:
		return fmt.Errorf("unknown PHOTO_DELIVERY %q", c.PhotoDelivery)
	}
	return nil
}
