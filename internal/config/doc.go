// Package config loads runtime configuration for repoctl.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, then the process environment
//     (REPOSHELF_* variables). The process environment wins over the file.
//  3. Optional JSON or YAML file selected via -c or -config. The format
//     follows the extension; anything other than .yaml/.yml is read as JSON.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-driver string         sqlite or pgx
//	-dsn string            data source name
//	-log-level string      debug, info, warn, error
//	-log-format string     text, json, zap, zap-dev
//	-notify string         memory, redis or file
//	-redis-addr string     host:port of the redis server
//	-purge-timeout dur     bound on each background purge
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds:
//
//	driver: sqlite
//	dsn: data/repos.db
//	log_format: zap
//	notify_backend: redis
//	redis_addr: 127.0.0.1:6379
//	purge_timeout: 30s
package config
