package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Storage   StorageConfig   `mapstructure:"storage"`
	MySQL     DatabaseConfig  `mapstructure:"mysql"`
	SQLite    SQLiteConfig    `mapstructure:"sqlite"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Audit     AuditConfig     `mapstructure:"audit"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// APIKeyConfig is one entry of the startup key set.
type APIKeyConfig struct {
	Key  string `mapstructure:"key"`
	Role string `mapstructure:"role"` // admin|standard
}

type AuthConfig struct {
	Keys              []APIKeyConfig `mapstructure:"keys"`
	FingerprintSecret string         `mapstructure:"fingerprint_secret"`
	MaxFailedAttempts int            `mapstructure:"max_failed_attempts"`
	FailureWindow     time.Duration  `mapstructure:"failure_window"`
	BlockDuration     time.Duration  `mapstructure:"block_duration"`
}

type RateLimitConfig struct {
	Global GlobalLimitConfig `mapstructure:"global"`
	Write  WriteLimitConfig  `mapstructure:"write"`
}

// GlobalLimitConfig shapes the per-client-address limiter applied to every
// request.
type GlobalLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// WriteLimitConfig shapes the stricter fixed-window limiter on authenticated
// write endpoints. Keyed by API key, falling back to the client address.
// Backend "redis" shares counters across processes; "memory" is per-process.
type WriteLimitConfig struct {
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
	Backend string        `mapstructure:"backend"` // memory|redis
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // memory|mysql|sqlite
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// AuditConfig controls the audit sink. Events always go to the structured
// log; when Brokers is non-empty they are also published to Kafka.
type AuditConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies
// env overrides (ORDERGW_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (ORDERGW_*)
	v.SetEnvPrefix("ORDERGW")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fails fast on configuration the process cannot run without.
func (c Config) Validate() error {
	if len(c.Auth.Keys) == 0 {
		return fmt.Errorf("config: auth.keys must not be empty")
	}
	seen := make(map[string]struct{}, len(c.Auth.Keys))
	for _, k := range c.Auth.Keys {
		if k.Key == "" {
			return fmt.Errorf("config: auth.keys contains an empty key")
		}
		if _, dup := seen[k.Key]; dup {
			return fmt.Errorf("config: duplicate api key in auth.keys")
		}
		seen[k.Key] = struct{}{}
		if k.Role != "admin" && k.Role != "standard" {
			return fmt.Errorf("config: auth key role must be admin or standard, got %q", k.Role)
		}
	}
	if c.Auth.FingerprintSecret == "" {
		return fmt.Errorf("config: auth.fingerprint_secret is required")
	}
	switch c.Storage.Driver {
	case "memory", "mysql", "sqlite":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.RateLimit.Write.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown write limiter backend %q", c.RateLimit.Write.Backend)
	}
	return nil
}
