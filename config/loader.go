package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const ENV_PREFIX = "DISCOVER"

// Config is the runtime configuration. Values come from, in increasing priority,
// the constants above, an optional config file, and DISCOVER_* environment variables.
type Config struct {
	Env      string `mapstructure:"env"`
	HTTPAddr string `mapstructure:"http_addr"`
	Backend  string `mapstructure:"backend"`

	SupabaseURL string `mapstructure:"supabase_url"`
	SupabaseKey string `mapstructure:"supabase_key"`
	DatabaseURL string `mapstructure:"database_url"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	OriginLat              float64       `mapstructure:"origin_lat"`
	OriginLong             float64       `mapstructure:"origin_long"`
	RadiusMeters           float64       `mapstructure:"radius_meters"`
	PageSize               int           `mapstructure:"page_size"`
	DebounceWindow         time.Duration `mapstructure:"debounce_window"`
	PopularReviewThreshold int           `mapstructure:"popular_review_threshold"`
	ViewRefreshInterval    time.Duration `mapstructure:"view_refresh_interval"`
	Timezone               string        `mapstructure:"timezone"`
	OpenNowDefault         bool          `mapstructure:"open_now_default"`

	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	ReaperInterval  time.Duration `mapstructure:"reaper_interval"`
	LongPollMaxWait time.Duration `mapstructure:"long_poll_max_wait"`

	SearchRateLimit   float64 `mapstructure:"search_rate_limit"`
	SearchBurst       int     `mapstructure:"search_burst"`
	ScheduleCacheSize int     `mapstructure:"schedule_cache_size"`
	PhoneRegion       string  `mapstructure:"phone_region"`

	S3Region           string `mapstructure:"s3_region"`
	S3Bucket           string `mapstructure:"s3_bucket"`
	S3Endpoint         string `mapstructure:"s3_endpoint"`
	MediaPublicBaseURL string `mapstructure:"media_public_base_url"`

	FixturePath string `mapstructure:"fixture_path"`
}

// SetDefaults registers every key so environment variables can override it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("env", ENV)
	v.SetDefault("http_addr", HTTP_ADDR)
	v.SetDefault("backend", BACKEND)
	v.SetDefault("supabase_url", "")
	v.SetDefault("supabase_key", "")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_addr", REDIS_DB_ADDRESS)
	v.SetDefault("redis_password", REDIS_DB_PASSWORD)
	v.SetDefault("redis_db", REDIS_DB)
	v.SetDefault("origin_lat", ORIGIN_LAT)
	v.SetDefault("origin_long", ORIGIN_LONG)
	v.SetDefault("radius_meters", RADIUS_METERS)
	v.SetDefault("page_size", PAGE_SIZE)
	v.SetDefault("debounce_window", DEBOUNCE_WINDOW_MS*time.Millisecond)
	v.SetDefault("popular_review_threshold", POPULAR_REVIEW_THRESHOLD)
	v.SetDefault("view_refresh_interval", VIEW_REFRESH_INTERVAL_SECONDS*time.Second)
	v.SetDefault("timezone", TIMEZONE)
	v.SetDefault("open_now_default", OPEN_NOW_DEFAULT)
	v.SetDefault("session_ttl", SESSION_TTL_MINUTES*time.Minute)
	v.SetDefault("reaper_interval", SESSION_REAPER_SCHEDULE_MINUTES*time.Minute)
	v.SetDefault("long_poll_max_wait", LONG_POLL_WAIT_SECONDS*time.Second)
	v.SetDefault("search_rate_limit", SEARCH_RATE_LIMIT)
	v.SetDefault("search_burst", SEARCH_BURST)
	v.SetDefault("schedule_cache_size", SCHEDULE_CACHE_SIZE)
	v.SetDefault("phone_region", PHONE_REGION)
	v.SetDefault("s3_region", S3_REGION)
	v.SetDefault("s3_bucket", S3_BUCKET)
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("media_public_base_url", "")
	v.SetDefault("fixture_path", GetResourcePath(ESTABLISHMENTS_RESOURCE))
}

// Load reads cfgFile when given, otherwise an optional ./discover.{yaml,json,toml}.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("discover")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	decoderConfigOption := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&cfg, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var ErrInvalidConfig = errors.New("invalid config")

func (c *Config) Validate() error {
	switch c.Backend {
	case "rpc":
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("%w: backend rpc needs supabase_url and supabase_key", ErrInvalidConfig)
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: backend postgres needs database_url", ErrInvalidConfig)
		}
	case "redis", "mock":
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: page_size must be positive", ErrInvalidConfig)
	}
	if c.SessionTTL <= 0 || c.ReaperInterval <= 0 {
		return fmt.Errorf("%w: session_ttl and reaper_interval must be positive", ErrInvalidConfig)
	}
	if c.DebounceWindow < 0 {
		return fmt.Errorf("%w: debounce_window must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return nil
}

// Location resolves Timezone; opening hours are evaluated in it.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
