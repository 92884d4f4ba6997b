package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/reposhelf/internal/flagx"
)

// FlagNames lists every process-level flag, in all accepted spellings.
// Callers use it to split these from subcommand arguments.
var FlagNames = []string{
	"-c", "-config", "--config",
	"-driver", "--driver",
	"-dsn", "--dsn",
	"-log-level", "--log-level",
	"-log-format", "--log-format",
	"-notify", "--notify",
	"-redis-addr", "--redis-addr",
	"-purge-timeout", "--purge-timeout",
}

// parseFlags overlays cfg with the flags found in args. Unknown arguments
// are ignored.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("repoctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var ignored string
	fs.StringVar(&ignored, "c", "", "path to config file (short)")
	fs.StringVar(&ignored, "config", "", "path to config file")

	fs.StringVar(&cfg.Driver, "driver", cfg.Driver, "database driver: sqlite or pgx")
	fs.StringVar(&cfg.DSN, "dsn", cfg.DSN, "data source name")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text, json, zap, zap-dev")
	fs.StringVar(&cfg.NotifyBackend, "notify", cfg.NotifyBackend, "notification backend: memory, redis or file")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "redis host:port")
	fs.DurationVar(&cfg.PurgeTimeout, "purge-timeout", cfg.PurgeTimeout, "bound on each background purge")

	return fs.Parse(flagx.FilterArgs(args, FlagNames))
}
