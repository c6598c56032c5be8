package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./typefeed.db" description:"Path to the SQLite database file"`

	// Application configuration
	SourcesFile      string `long:"sources-file" env:"SOURCES_FILE" default:"./sources.yml" description:"Path to the source registry file"`
	Port             string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	NewsAPIKey       string `long:"newsapi-key" env:"NEWS_API_KEY" description:"NewsAPI access key (optional, disables the NewsAPI source when empty)"`
	APIAccessKey     string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`
	WorkerCount      int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for sync tasks"`
	SyncInterval     int    `long:"sync-interval" env:"SYNC_INTERVAL" default:"30" description:"Category sync interval in minutes"`
	CleanupInterval  int    `long:"cleanup-interval" env:"CLEANUP_INTERVAL" default:"6" description:"Stale article cleanup interval in hours"`
	ReindexInterval  int    `long:"reindex-interval" env:"REINDEX_INTERVAL" default:"24" description:"Full reindex interval in hours"`
	RetentionHours   int    `long:"retention-hours" env:"RETENTION_HOURS" default:"48" description:"How long articles are retained, in hours"`
	RotationPoolSize int    `long:"rotation-pool-size" env:"ROTATION_POOL_SIZE" default:"100" description:"Number of recent articles considered per rotation pick"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Typefeed/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:           raw.DBPath,
		SourcesFile:      raw.SourcesFile,
		Port:             raw.Port,
		NewsAPIKey:       raw.NewsAPIKey,
		APIAccessKey:     raw.APIAccessKey,
		WorkerCount:      raw.WorkerCount,
		SyncInterval:     raw.SyncInterval,
		CleanupInterval:  raw.CleanupInterval,
		ReindexInterval:  raw.ReindexInterval,
		RetentionHours:   raw.RetentionHours,
		RotationPoolSize: raw.RotationPoolSize,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
