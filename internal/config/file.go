package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/reposhelf/internal/flagx"
	"github.com/dmitrijs2005/reposhelf/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for file decoding. Zero values leave
// the corresponding Config field alone.
type FileConfig struct {
	Driver             string         `json:"driver" yaml:"driver"`
	DSN                string         `json:"dsn" yaml:"dsn"`
	LogLevel           string         `json:"log_level" yaml:"log_level"`
	LogFormat          string         `json:"log_format" yaml:"log_format"`
	NotifyBackend      string         `json:"notify_backend" yaml:"notify_backend"`
	NotifyBuffer       int            `json:"notify_buffer" yaml:"notify_buffer"`
	RedisAddr          string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword      string         `json:"redis_password" yaml:"redis_password"`
	RedisDB            int            `json:"redis_db" yaml:"redis_db"`
	RedisChannelPrefix string         `json:"redis_channel_prefix" yaml:"redis_channel_prefix"`
	PurgeTimeout       timex.Duration `json:"purge_timeout" yaml:"purge_timeout"`
}

func configFile(args []string) string {
	return flagx.ConfigFileFlag(args)
}

func parseFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Driver, fc.Driver)
	set(&cfg.DSN, fc.DSN)
	set(&cfg.LogLevel, fc.LogLevel)
	set(&cfg.LogFormat, fc.LogFormat)
	set(&cfg.NotifyBackend, fc.NotifyBackend)
	set(&cfg.RedisAddr, fc.RedisAddr)
	set(&cfg.RedisPassword, fc.RedisPassword)
	set(&cfg.RedisChannelPrefix, fc.RedisChannelPrefix)

	if fc.NotifyBuffer > 0 {
		cfg.NotifyBuffer = fc.NotifyBuffer
	}
	if fc.RedisDB > 0 {
		cfg.RedisDB = fc.RedisDB
	}
	if fc.PurgeTimeout.Duration > 0 {
		cfg.PurgeTimeout = fc.PurgeTimeout.Duration
	}
}
