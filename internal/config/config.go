package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/reposhelf/internal/dbx"
	"github.com/dmitrijs2005/reposhelf/internal/notify"
)

// Notification backends.
const (
	NotifyMemory = "memory"
	NotifyRedis  = "redis"
	// NotifyFile watches the SQLite database file. It sees writes from other
	// processes but cannot tell records apart.
	NotifyFile = "file"
)

// Config holds runtime settings for repoctl.
type Config struct {
	Driver    string
	DSN       string
	LogLevel  string
	LogFormat string

	NotifyBackend      string
	NotifyBuffer       int
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisChannelPrefix string

	PurgeTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Driver = string(dbx.SQLite)
	c.DSN = "repos.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.NotifyBackend = NotifyMemory
	c.NotifyBuffer = notify.DefaultBuffer
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisChannelPrefix = notify.DefaultChannelPrefix
	c.PurgeTimeout = 30 * time.Second
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	dialect, err := dbx.ParseDialect(c.Driver)
	if err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("dsn must not be empty")
	}
	switch c.NotifyBackend {
	case NotifyMemory:
	case NotifyRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis backend needs redis_addr")
		}
	case NotifyFile:
		if dialect != dbx.SQLite {
			return fmt.Errorf("file notify backend needs the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown notify backend %q", c.NotifyBackend)
	}
	return nil
}

// LoadConfig builds a Config from defaults, .env and environment, an
// optional config file, then the flags found in args. Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, lookupEnv(DotEnvFile)); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, configFile(args)); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
