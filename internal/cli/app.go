package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/reposhelf/internal/config"
	"github.com/dmitrijs2005/reposhelf/internal/database"
	"github.com/dmitrijs2005/reposhelf/internal/dbx"
	"github.com/dmitrijs2005/reposhelf/internal/logging"
	"github.com/dmitrijs2005/reposhelf/internal/notify"
	"github.com/dmitrijs2005/reposhelf/internal/purge"
	"github.com/dmitrijs2005/reposhelf/internal/repos"
	"github.com/dmitrijs2005/reposhelf/internal/services"
	"golang.org/x/term"
)

// App holds the wired services a command runs against.
type App struct {
	Config *config.Config
	Log    logging.Logger
	Repos  services.RepoService

	store   *repos.Store
	closers []func() error
}

// NewApp opens the database, migrates it and wires the store with the
// configured notifier and purger. Logs go to logOut.
func NewApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	log, err := logging.New(logFormat(cfg.LogFormat, logOut), cfg.LogLevel, logOut)
	if err != nil {
		return nil, err
	}

	database.SetLogger(log)
	db, dialect, err := database.OpenAndMigrate(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	a := &App{Config: cfg, Log: log}
	a.closers = append(a.closers, db.Close)
	if z, ok := log.(*logging.ZapLogger); ok {
		// Sync on a terminal stderr fails with EINVAL; nothing is lost.
		a.closers = append(a.closers, func() error { _ = z.Sync(); return nil })
	}

	notifier, err := a.notifier(cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.wire(db, dialect, notifier)
	return a, nil
}

func (a *App) wire(db *sql.DB, dialect dbx.Dialect, notifier notify.Notifier) {
	purger := purge.NewSQLPurger(db, dialect, a.Log.With("component", "purge"))
	a.store = repos.NewStore(db,
		repos.WithDialect(dialect),
		repos.WithLogger(a.Log.With("component", "repos")),
		repos.WithNotifier(notifier),
		repos.WithPurger(purger),
		repos.WithPurgeTimeout(a.Config.PurgeTimeout),
	)
	a.Repos = services.NewRepoService(a.store, purger)
}

func (a *App) notifier(cfg *config.Config) (notify.Notifier, error) {
	switch cfg.NotifyBackend {
	case config.NotifyRedis:
		client := notify.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		a.closers = append(a.closers, client.Close)
		return notify.NewRedisNotifier(client, cfg.RedisChannelPrefix, cfg.NotifyBuffer, a.Log), nil
	case config.NotifyFile:
		path := database.SQLitePath(cfg.DSN)
		if path == "" {
			return nil, fmt.Errorf("notify backend %q needs a file database, got %q", config.NotifyFile, cfg.DSN)
		}
		return notify.NewFileNotifier(path, cfg.NotifyBuffer, a.Log), nil
	case config.NotifyMemory, "":
		return notify.NewBroker(cfg.NotifyBuffer, a.Log), nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.NotifyBackend)
	}
}

// Close waits for background purges, then releases everything NewApp
// opened in reverse order.
func (a *App) Close() error {
	if a.store != nil {
		a.store.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// logFormat switches zap to its coloured development encoder when logs go
// to an interactive terminal.
func logFormat(format string, w io.Writer) string {
	if format != logging.FormatZap {
		return format
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return logging.FormatZapDev
	}
	return format
}
