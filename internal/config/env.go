package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

const envPrefix = "REPOSHELF_"

// lookupEnv returns a lookup over the process environment backed by the
// variables of a dotenv file. A missing or unreadable file is skipped.
func lookupEnv(path string) func(string) (string, bool) {
	file, err := godotenv.Read(path)
	if err != nil {
		file = map[string]string{}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}
}

func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	str("DRIVER", &cfg.Driver)
	str("DSN", &cfg.DSN)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("NOTIFY_BACKEND", &cfg.NotifyBackend)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASSWORD", &cfg.RedisPassword)
	str("REDIS_CHANNEL_PREFIX", &cfg.RedisChannelPrefix)

	if v, ok := lookup(envPrefix + "REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", envPrefix, err)
		}
		cfg.RedisDB = n
	}
	if v, ok := lookup(envPrefix + "NOTIFY_BUFFER"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sNOTIFY_BUFFER: %w", envPrefix, err)
		}
		cfg.NotifyBuffer = n
	}
	if v, ok := lookup(envPrefix + "PURGE_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sPURGE_TIMEOUT: %w", envPrefix, err)
		}
		cfg.PurgeTimeout = d
	}
	return nil
}
