package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// LookupRetentionDays prunes audit entries older than this many days;
	// zero keeps everything.
	LookupRetentionDays int
}

type AuthConfig struct {
	AccessSecret string
}

// VESConfig holds the official vehicle enquiry API settings.
type VESConfig struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// MOTConfig holds the official MOT history trade API settings.
type MOTConfig struct {
	BaseURL      string
	APIKey       string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scope        string
	Timeout      time.Duration
	CacheTTL     time.Duration
}

// ScraperConfig holds the third-party specification site settings.
type ScraperConfig struct {
	BaseURL     string
	Timeout     time.Duration
	CacheTTL    time.Duration
	MinInterval time.Duration
}

// RegistryConfig holds the Isle of Man government registry settings.
type RegistryConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// InsuranceConfig holds the insurance database settings.
type InsuranceConfig struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	VES         VESConfig
	MOT         MOTConfig
	Scraper     ScraperConfig
	Registry    RegistryConfig
	Insurance   InsuranceConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:                 v.GetString("DB_DSN"),
			MaxOpenConns:        v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:        v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime:     v.GetDuration("DB_CONN_MAX_LIFETIME"),
			LookupRetentionDays: v.GetInt("DB_LOOKUP_RETENTION_DAYS"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		VES: VESConfig{
			BaseURL:  v.GetString("VES_BASE_URL"),
			APIKey:   v.GetString("VES_API_KEY"),
			Timeout:  v.GetDuration("VES_TIMEOUT"),
			CacheTTL: v.GetDuration("VES_CACHE_TTL"),
		},
		MOT: MOTConfig{
			BaseURL:      v.GetString("MOT_BASE_URL"),
			APIKey:       v.GetString("MOT_API_KEY"),
			ClientID:     v.GetString("MOT_CLIENT_ID"),
			ClientSecret: v.GetString("MOT_CLIENT_SECRET"),
			TokenURL:     v.GetString("MOT_TOKEN_URL"),
			Scope:        v.GetString("MOT_SCOPE"),
			Timeout:      v.GetDuration("MOT_TIMEOUT"),
			CacheTTL:     v.GetDuration("MOT_CACHE_TTL"),
		},
		Scraper: ScraperConfig{
			BaseURL:     v.GetString("SCRAPER_BASE_URL"),
			Timeout:     v.GetDuration("SCRAPER_TIMEOUT"),
			CacheTTL:    v.GetDuration("SCRAPER_CACHE_TTL"),
			MinInterval: v.GetDuration("SCRAPER_MIN_INTERVAL"),
		},
		Registry: RegistryConfig{
			BaseURL:  v.GetString("IOM_REGISTRY_BASE_URL"),
			Timeout:  v.GetDuration("IOM_REGISTRY_TIMEOUT"),
			CacheTTL: v.GetDuration("IOM_REGISTRY_CACHE_TTL"),
		},
		Insurance: InsuranceConfig{
			BaseURL:  v.GetString("INSURANCE_BASE_URL"),
			APIKey:   v.GetString("INSURANCE_API_KEY"),
			Timeout:  v.GetDuration("INSURANCE_TIMEOUT"),
			CacheTTL: v.GetDuration("INSURANCE_CACHE_TTL"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	applyDurationDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDurationDefaults(cfg *Config) {
	setDefault := func(d *time.Duration, fallback time.Duration) {
		if *d == 0 {
			*d = fallback
		}
	}
	setDefault(&cfg.VES.Timeout, 8*time.Second)
	setDefault(&cfg.MOT.Timeout, 8*time.Second)
	setDefault(&cfg.Scraper.Timeout, 8*time.Second)
	setDefault(&cfg.Registry.Timeout, 8*time.Second)
	setDefault(&cfg.Insurance.Timeout, 8*time.Second)

	setDefault(&cfg.VES.CacheTTL, time.Hour)
	setDefault(&cfg.MOT.CacheTTL, time.Hour)
	setDefault(&cfg.Scraper.CacheTTL, time.Hour)
	setDefault(&cfg.Insurance.CacheTTL, time.Hour)
	// Registry results change rarely and the session handshake is slow.
	setDefault(&cfg.Registry.CacheTTL, 24*time.Hour)

	setDefault(&cfg.Scraper.MinInterval, 2*time.Second)
}

func validate(cfg *Config) error {
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}
