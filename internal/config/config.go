// README: Config loader (viper) with defaults for HTTP, DB, Redis, quoting and booking settings.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const envPrefix = "RENTAL"

type HTTPConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type QuoteConfig struct {
	Timezone       string `mapstructure:"timezone"`
	Tiers          string `mapstructure:"tiers"`
	ChatThreshold  int64  `mapstructure:"chat_threshold"`
	ChatChannelURL string `mapstructure:"chat_channel_url"`
	BranchMode     bool   `mapstructure:"branch_mode"`
}

type BookingConfig struct {
	SubmitDelay  time.Duration `mapstructure:"submit_delay"`
	ConfirmDelay time.Duration `mapstructure:"confirm_delay"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	AllowZeroDay bool          `mapstructure:"allow_zero_day"`
	SweepSpec    string        `mapstructure:"sweep_spec"`
}

type LimitsConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type Config struct {
	Env  string     `mapstructure:"env"`
	HTTP HTTPConfig `mapstructure:"http"`
	DB   struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Catalog struct {
		File string `mapstructure:"file"`
	} `mapstructure:"catalog"`
	Quote   QuoteConfig   `mapstructure:"quote"`
	Booking BookingConfig `mapstructure:"booking"`
	Limits  LimitsConfig  `mapstructure:"limits"`
}

// Tier mirrors quote.Tier so config stays free of module imports.
type Tier struct {
	MinDays int
	Percent int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"*"})
	// Empty DSN keeps the embedded catalog; empty Redis addr keeps bookings in memory.
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("catalog.file", "")
	v.SetDefault("quote.timezone", "Asia/Bangkok")
	v.SetDefault("quote.tiers", "1:0,3:5,7:10,14:15,30:20")
	v.SetDefault("quote.chat_threshold", 10000)
	v.SetDefault("quote.chat_channel_url", "https://line.me/R/oaMessage/@yourlineoa")
	v.SetDefault("quote.branch_mode", true)
	v.SetDefault("booking.submit_delay", "600ms")
	v.SetDefault("booking.confirm_delay", "500ms")
	v.SetDefault("booking.session_ttl", "24h")
	v.SetDefault("booking.allow_zero_day", true)
	v.SetDefault("booking.sweep_spec", "@every 10m")
	v.SetDefault("limits.requests_per_minute", 200)
	v.SetDefault("limits.burst", 50)
}

// Load reads defaults, an optional yaml file and RENTAL_* environment variables.
// An empty path looks for config.yaml in the working directory and ./config.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	// String slices from env arrive as a single comma-separated value.
	if len(cfg.HTTP.CORSOrigins) == 1 && strings.Contains(cfg.HTTP.CORSOrigins[0], ",") {
		cfg.HTTP.CORSOrigins = splitList(cfg.HTTP.CORSOrigins[0])
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("config: http.addr is required")
	}
	if c.Quote.ChatThreshold < 0 {
		return errors.New("config: quote.chat_threshold must be >= 0")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := ParseTiers(c.Quote.Tiers); err != nil {
		return err
	}
	if c.Booking.SubmitDelay < 0 || c.Booking.ConfirmDelay < 0 {
		return errors.New("config: booking delays must be >= 0")
	}
	if c.Booking.SessionTTL <= 0 {
		return errors.New("config: booking.session_ttl must be > 0")
	}
	if c.Limits.RequestsPerMinute <= 0 || c.Limits.Burst <= 0 {
		return errors.New("config: limits must be > 0")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves the quoting timezone used to interpret wall-clock dates.
func (c Config) Location() (*time.Location, error) {
	if c.Quote.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Quote.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: quote.timezone: %w", err)
	}
	return loc, nil
}

// ParseTiers reads "minDays:percent" pairs separated by commas, e.g. "1:0,3:5".
func ParseTiers(raw string) ([]Tier, error) {
	parts := splitList(raw)
	if len(parts) == 0 {
		return nil, errors.New("config: quote.tiers is empty")
	}
	tiers := make([]Tier, 0, len(parts))
	for _, p := range parts {
		minDays, pct, ok := strings.Cut(p, ":")
		if !ok {
			return nil, fmt.Errorf("config: bad tier %q", p)
		}
		d, err := strconv.Atoi(strings.TrimSpace(minDays))
		if err != nil {
			return nil, fmt.Errorf("config: bad tier days %q: %w", p, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(pct))
		if err != nil {
			return nil, fmt.Errorf("config: bad tier percent %q: %w", p, err)
		}
		tiers = append(tiers, Tier{MinDays: d, Percent: n})
	}
	return tiers, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
