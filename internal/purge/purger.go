// Package purge removes the app and apk rows that depend on a repo.
//
// The repo store calls PurgeDependents after a single-record delete without
// waiting for it. The façade exposes the same operation synchronously.
package purge

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/reposhelf/internal/dbx"
	"github.com/dmitrijs2005/reposhelf/internal/logging"
)

// Purger deletes everything a repo owns.
type Purger interface {
	PurgeDependents(ctx context.Context, repoID int64) error
}

// Result reports how many dependent rows a purge removed.
type Result struct {
	Apks int64
	Apps int64
}

// SQLPurger purges dependents inside a single transaction.
type SQLPurger struct {
	db      *sql.DB
	dialect dbx.Dialect
	log     logging.Logger
}

func NewSQLPurger(db *sql.DB, dialect dbx.Dialect, log logging.Logger) *SQLPurger {
	if log == nil {
		log = logging.Nop()
	}
	return &SQLPurger{db: db, dialect: dialect, log: log}
}

func (p *SQLPurger) PurgeDependents(ctx context.Context, repoID int64) error {
	_, err := p.Purge(ctx, repoID)
	return err
}

// Purge deletes the repo's apks, then every app left without an apk.
func (p *SQLPurger) Purge(ctx context.Context, repoID int64) (Result, error) {
	var res Result

	err := dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r, err := tx.ExecContext(ctx, p.dialect.Rebind(`DELETE FROM apk WHERE repo = ?`), repoID)
		if err != nil {
			return fmt.Errorf("delete apks: %w", err)
		}
		if res.Apks, err = r.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		r, err = tx.ExecContext(ctx, `DELETE FROM app WHERE id NOT IN (SELECT DISTINCT app_id FROM apk)`)
		if err != nil {
			return fmt.Errorf("delete orphaned apps: %w", err)
		}
		if res.Apps, err = r.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("purge repo %d: %w", repoID, err)
	}

	p.log.Info(ctx, "purged repo dependents", "repo", repoID, "apks", res.Apks, "apps", res.Apps)
	return res, nil
}
