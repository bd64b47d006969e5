package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimeline is the built-in report timeline used until the settings
// endpoint replaces it.
var DefaultTimeline = []string{
	"09:00", "09:15", "09:30", "09:45",
	"10:00", "10:15", "10:30", "10:45",
	"11:02", "11:12", "11:15", "11:30", "11:45",
	"12:00", "12:15", "12:21", "12:33", "12:35", "12:50", "12:51",
}

// DefaultAnnotations is the built-in set of timeline labels.
var DefaultAnnotations = map[string]string{
	"11:02": "Break starts",
	"11:12": "Break ends",
	"12:21": "PACE Intro",
	"12:33": "PACE investment",
	"12:35": "Pitch starts",
	"12:50": "Pitch ends",
	"12:51": "Workshop ends",
}

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Report   ReportConfig   `yaml:"report"`
	Timeline TimelineConfig `yaml:"timeline"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	MaxUploadBytes  int64   `yaml:"max_upload_bytes"`
}

// JobsConfig holds the job pipeline configuration.
type JobsConfig struct {
	WorkerPoolSize   int           `yaml:"worker_pool_size"`
	QueueSize        int           `yaml:"queue_size"`
	LogBuffer        int           `yaml:"log_buffer"`
	ResultTTLMinutes int           `yaml:"result_ttl_minutes"`
	ResultTTL        time.Duration `yaml:"-"` // Derived from ResultTTLMinutes
}

// ReportConfig holds the output artifact configuration.
type ReportConfig struct {
	OutputDir      string `yaml:"output_dir"`
	FilenamePrefix string `yaml:"filename_prefix"`
}

// TimelineConfig holds the default report timeline and its timezone.
type TimelineConfig struct {
	Timezone    string            `yaml:"timezone"`
	Points      []string          `yaml:"points"`
	Annotations map[string]string `yaml:"annotations"`
	Location    *time.Location    `yaml:"-"` // Ignored by YAML parser
}

// Load reads the configuration from the given path. A missing file is not an
// error: the built-in defaults are applied so the server can run unconfigured.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		log.Printf("config file %s not found; using built-in defaults", path)
	} else {
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = 25 * 1024 * 1024
	}

	if cfg.Jobs.WorkerPoolSize <= 0 {
		log.Printf("jobs.worker_pool_size is not set or invalid; defaulting to 4")
		cfg.Jobs.WorkerPoolSize = 4
	}
	if cfg.Jobs.QueueSize <= 0 {
		cfg.Jobs.QueueSize = 64
	}
	if cfg.Jobs.LogBuffer <= 0 {
		cfg.Jobs.LogBuffer = 256
	}
	if cfg.Jobs.ResultTTLMinutes <= 0 {
		cfg.Jobs.ResultTTLMinutes = 24 * 60
	}
	cfg.Jobs.ResultTTL = time.Duration(cfg.Jobs.ResultTTLMinutes) * time.Minute

	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = "outputs"
	}
	if cfg.Report.FilenamePrefix == "" {
		cfg.Report.FilenamePrefix = "Webinar_Attendee_Counter_Report"
	}

	if cfg.Timeline.Timezone == "" {
		cfg.Timeline.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(cfg.Timeline.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timeline.Timezone, err)
	}
	cfg.Timeline.Location = loc

	if len(cfg.Timeline.Points) == 0 {
		cfg.Timeline.Points = append([]string(nil), DefaultTimeline...)
	}
	if len(cfg.Timeline.Annotations) == 0 {
		cfg.Timeline.Annotations = make(map[string]string, len(DefaultAnnotations))
		for k, v := range DefaultAnnotations {
			cfg.Timeline.Annotations[k] = v
		}
	}

	return &cfg, nil
}
