// Package database opens the storage engine and brings its schema up to
// date with the embedded goose migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/reposhelf/internal/database/migrations"
	"github.com/dmitrijs2005/reposhelf/internal/dbx"
	"github.com/dmitrijs2005/reposhelf/internal/filex"
	"github.com/dmitrijs2005/reposhelf/internal/logging"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const sqliteBusyTimeout = "_pragma=busy_timeout(5000)"

// Open connects to the engine named by driver and checks the connection.
// "sqlite" selects modernc.org/sqlite, "pgx" the pgx stdlib driver and
// "postgres" lib/pq. For SQLite file databases the parent directory is
// created first.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, dbx.Dialect, error) {
	dialect, err := dbx.ParseDialect(driver)
	if err != nil {
		return nil, "", err
	}

	driverName := driverFor(driver, dialect)
	if dialect == dbx.SQLite {
		if path := SQLitePath(dsn); path != "" {
			if _, err := filex.EnsureParentDir(path); err != nil {
				return nil, "", err
			}
		}
		dsn = withBusyTimeout(dsn)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", driverName, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping %s: %w", driverName, err)
	}
	return db, dialect, nil
}

func driverFor(driver string, dialect dbx.Dialect) string {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql":
		return "postgres"
	default:
		return string(dialect)
	}
}

// SQLitePath returns the file a SQLite DSN points at, or "" for in-memory
// databases.
func SQLitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	return path
}

func withBusyTimeout(dsn string) string {
	if strings.Contains(dsn, "busy_timeout") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqliteBusyTimeout
	}
	return dsn + "?" + sqliteBusyTimeout
}

func init() {
	goose.SetLogger(goose.NopLogger())
}

// SetLogger sends goose output to log at debug level. Until it is called
// migrations run silently.
func SetLogger(log logging.Logger) {
	if log == nil {
		goose.SetLogger(goose.NopLogger())
		return
	}
	goose.SetLogger(gooseLogger{log: log.With("component", "goose")})
}

type gooseLogger struct {
	log logging.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Debug(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations for dialect.
func RunMigrations(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	var gooseDialect, dir string
	switch dialect {
	case dbx.SQLite:
		gooseDialect, dir = "sqlite3", "sqlite"
	case dbx.Postgres:
		gooseDialect, dir = "pgx", "postgres"
	default:
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// OpenAndMigrate is Open followed by RunMigrations.
func OpenAndMigrate(ctx context.Context, driver, dsn string) (*sql.DB, dbx.Dialect, error) {
	db, dialect, err := Open(ctx, driver, dsn)
	if err != nil {
		return nil, "", err
	}
	if err := RunMigrations(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, "", err
	}
	return db, dialect, nil
}
