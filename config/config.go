package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Playback   PlaybackConfig   `yaml:"playback"`
	Camera     CameraConfig     `yaml:"camera"`
	Checkout   CheckoutConfig   `yaml:"checkout"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the assistance notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// StoreConfig points at an optional layout file. The built-in store is used when empty.
type StoreConfig struct {
	LayoutPath string `yaml:"layout_path"`
}

// PlaybackConfig controls the route playback timers and variant.
type PlaybackConfig struct {
	TickIntervalMs       int           `yaml:"tick_interval_ms"`
	TickInterval         time.Duration `yaml:"-"`
	AutoContinue         bool          `yaml:"auto_continue"`
	RequirePhoto         bool          `yaml:"require_photo"`
	TimeSavedPerItem     int           `yaml:"time_saved_per_item"`
	TimeSavedDecayMs     int           `yaml:"time_saved_decay_ms"`
	TimeSavedDecay       time.Duration `yaml:"-"`
	AssistanceDurationMs int           `yaml:"assistance_duration_ms"`
	AssistanceDuration   time.Duration `yaml:"-"`
}

// CameraConfig holds the frame directory used as the device camera.
type CameraConfig struct {
	FrameDir string `yaml:"frame_dir"`
}

// CheckoutConfig holds the mock pricing and payment settings.
type CheckoutConfig struct {
	MinPrice       float64       `yaml:"min_price"`
	MaxPrice       float64       `yaml:"max_price"`
	PaymentDelayMs int           `yaml:"payment_delay_ms"`
	PaymentDelay   time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "sqlite" or "postgres"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset values and derives the duration fields.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Playback.TickIntervalMs <= 0 {
		cfg.Playback.TickIntervalMs = 1500
	}
	cfg.Playback.TickInterval = time.Duration(cfg.Playback.TickIntervalMs) * time.Millisecond

	if cfg.Playback.TimeSavedPerItem <= 0 {
		cfg.Playback.TimeSavedPerItem = 2
	}
	if cfg.Playback.TimeSavedDecayMs <= 0 {
		cfg.Playback.TimeSavedDecayMs = 3000
	}
	cfg.Playback.TimeSavedDecay = time.Duration(cfg.Playback.TimeSavedDecayMs) * time.Millisecond

	if cfg.Playback.AssistanceDurationMs <= 0 {
		cfg.Playback.AssistanceDurationMs = 5000
	}
	cfg.Playback.AssistanceDuration = time.Duration(cfg.Playback.AssistanceDurationMs) * time.Millisecond

	if cfg.Checkout.MinPrice <= 0 {
		cfg.Checkout.MinPrice = 2.00
	}
	if cfg.Checkout.MaxPrice <= cfg.Checkout.MinPrice {
		log.Printf("checkout.max_price is not above min_price; defaulting to %.2f", cfg.Checkout.MinPrice+10)
		cfg.Checkout.MaxPrice = cfg.Checkout.MinPrice + 10
	}
	if cfg.Checkout.PaymentDelayMs < 0 {
		cfg.Checkout.PaymentDelayMs = 0
	}
	cfg.Checkout.PaymentDelay = time.Duration(cfg.Checkout.PaymentDelayMs) * time.Millisecond

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "file:smartbuy.db?cache=shared"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}
