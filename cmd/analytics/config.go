package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultBindHost     = "127.0.0.1"
	defaultAPIPort      = 3000
	defaultQueryTimeout = 30 * time.Second
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	LogsPath         string        `mapstructure:"logs-path"`
	AnalyticsPath    string        `mapstructure:"analytics-path"`
	WatermarkPath    string        `mapstructure:"watermark-path"`
	Delimiter        string        `mapstructure:"delimiter"`
	ExcludedUsers    []string      `mapstructure:"excluded-users"`
	ExcludedPatients []string      `mapstructure:"excluded-patients"`
	DBDSN            string        `mapstructure:"db-dsn"`
	DBPath           string        `mapstructure:"db-path"`
	APIEnabled       bool          `mapstructure:"api-enabled"`
	APIPort          int           `mapstructure:"api-port"`
	APIAddr          string        `mapstructure:"api-addr"`
	QueryTimeout     time.Duration `mapstructure:"query-timeout"`

	ArchiveEnabled   bool   `mapstructure:"archive-enabled"`
	ArchiveBucketURL string `mapstructure:"archive-bucket-url"`
	S3Endpoint       string `mapstructure:"s3-endpoint"`
	S3Region         string `mapstructure:"s3-region"`
	S3AccessKey      string `mapstructure:"s3-access-key"`
	S3SecretKey      string `mapstructure:"s3-secret-key"`
	S3SessionToken   string `mapstructure:"s3-session-token"`
	S3UseSSL         bool   `mapstructure:"s3-use-ssl"`

	ConfigPath string `mapstructure:"-"` // not from config file
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("ANALYTICS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("logs-path", "./logs")
	v.SetDefault("analytics-path", "./analytics")
	v.SetDefault("watermark-path", filepath.Join("./analytics", "lastlog"))
	v.SetDefault("delimiter", "|")
	v.SetDefault("api-enabled", false)
	v.SetDefault("api-port", defaultAPIPort)
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("s3-use-ssl", true)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "analytics", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return cfg, fmt.Errorf("invalid api-port: %d", cfg.APIPort)
	}
	if strings.TrimSpace(cfg.LogsPath) == "" {
		return cfg, fmt.Errorf("logs-path is required")
	}
	if strings.TrimSpace(cfg.AnalyticsPath) == "" {
		return cfg, fmt.Errorf("analytics-path is required")
	}
	if cfg.Delimiter == "" {
		return cfg, fmt.Errorf("delimiter must not be empty")
	}
	if cfg.APIEnabled && strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, fmt.Errorf("api-enabled requires db-path")
	}

	// Expand ~ in path settings.
	for _, path := range []*string{&cfg.LogsPath, &cfg.AnalyticsPath, &cfg.WatermarkPath, &cfg.DBPath} {
		if strings.HasPrefix(*path, "~/") {
			*path = filepath.Join(home, (*path)[2:])
		}
	}

	if cfg.APIAddr == "" {
		cfg.APIAddr = net.JoinHostPort(defaultBindHost, strconv.Itoa(cfg.APIPort))
	}

	return cfg, nil
}
