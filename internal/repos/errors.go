package repos

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/reposhelf/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// isConstraintError reports whether the engine rejected a row for breaking
// a schema constraint (NOT NULL, CHECK, UNIQUE, FOREIGN KEY).
func isConstraintError(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "23"
	}

	return strings.Contains(err.Error(), "constraint failed")
}

// wrapWriteError keeps the engine error intact and marks constraint
// rejections with common.ErrConstraintViolation.
func wrapWriteError(op string, err error) error {
	if isConstraintError(err) {
		return fmt.Errorf("%s: %w: %w", op, common.ErrConstraintViolation, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
