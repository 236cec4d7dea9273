// Command analytics runs the usage-analytics extract: it snapshots the
// app database, interprets the new application log files into
// navigations and sessions, and writes the delimited output tables.
// With the API enabled it stays up and serves the warehouse over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/stanbell/analytics/internal/appdb"
	"github.com/stanbell/analytics/internal/archive"
	"github.com/stanbell/analytics/internal/httpserver"
	"github.com/stanbell/analytics/internal/model"
	"github.com/stanbell/analytics/internal/runner"
	"github.com/stanbell/analytics/internal/warehouse"
)

// Build variables - set by ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var configPath string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/analytics/config.yml)")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("analytics %s (%s)\n", version, commit)
		return
	}

	// Local .env files carry the DB and S3 credentials in dev setups.
	_ = godotenv.Load()

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg appConfig) error {
	if err := os.MkdirAll(cfg.AnalyticsPath, 0755); err != nil {
		return fmt.Errorf("creating analytics dir: %w", err)
	}

	var snapshot model.SnapshotSource
	if cfg.DBDSN != "" {
		store, err := appdb.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		snapshot = store
	} else {
		log.Printf("no db-dsn configured, skipping the admissions/users snapshot")
	}

	var sessions model.SessionWriter
	var store *warehouse.Store
	if cfg.DBPath != "" {
		var err error
		store, err = warehouse.NewStore(cfg.DBPath, cfg.QueryTimeout)
		if err != nil {
			return err
		}
		defer store.Close()
		sessions = store
	}

	archiver, err := archive.NewArchiver(archive.Config{
		Enabled:        cfg.ArchiveEnabled,
		BucketURL:      cfg.ArchiveBucketURL,
		S3Endpoint:     cfg.S3Endpoint,
		S3Region:       cfg.S3Region,
		S3AccessKey:    cfg.S3AccessKey,
		S3SecretKey:    cfg.S3SecretKey,
		S3SessionToken: cfg.S3SessionToken,
		S3UseSSL:       cfg.S3UseSSL,
	})
	if err != nil {
		return err
	}

	r := runner.New(runner.Config{
		LogsDir:          cfg.LogsPath,
		AnalyticsDir:     cfg.AnalyticsPath,
		WatermarkPath:    cfg.WatermarkPath,
		Delimiter:        cfg.Delimiter,
		ExcludedUsers:    cfg.ExcludedUsers,
		ExcludedPatients: cfg.ExcludedPatients,
	}, snapshot, sessions, archiver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := r.Run(ctx); err != nil {
		return err
	}

	if !cfg.APIEnabled {
		return nil
	}

	// Stay up and serve the loaded warehouse until interrupted.
	apiServer := httpserver.NewServer(cfg.APIAddr, store)
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer apiServer.Stop()
	log.Printf("analytics API listening on %s", cfg.APIAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutting down")
	return nil
}
