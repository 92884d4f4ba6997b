package repos

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/reposhelf/internal/models"
)

// timestampLayouts covers what the supported drivers hand back for a
// TIMESTAMP column stored as text.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	time.DateTime,
	time.DateOnly,
}

// nullTime scans a nullable timestamp from either a native time value or
// its textual form.
type nullTime struct {
	Time  time.Time
	Valid bool
}

func (n *nullTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n = nullTime{}
		return nil
	case time.Time:
		*n = nullTime{Time: v.UTC(), Valid: true}
		return nil
	case []byte:
		return n.parse(string(v))
	case string:
		return n.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (n *nullTime) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*n = nullTime{Time: t.UTC(), Valid: true}
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}

// scanDest returns a scan target for column and a function reading it back
// as a field-set value (nil for NULL).
func scanDest(column string) (any, func() any) {
	switch models.KindOf(column) {
	case models.KindInt:
		var v sql.NullInt64
		return &v, func() any {
			if !v.Valid {
				return nil
			}
			return v.Int64
		}
	case models.KindBool:
		var v sql.NullBool
		return &v, func() any {
			if !v.Valid {
				return nil
			}
			return v.Bool
		}
	case models.KindTime:
		var v nullTime
		return &v, func() any {
			if !v.Valid {
				return nil
			}
			return v.Time
		}
	default:
		var v sql.NullString
		return &v, func() any {
			if !v.Valid {
				return nil
			}
			return v.String
		}
	}
}

// scanRepos reads every row into a snapshot. Columns outside the projection
// keep their zero values.
func scanRepos(rows *sql.Rows, columns []string) ([]models.Repo, error) {
	var result []models.Repo

	for rows.Next() {
		dest := make([]any, len(columns))
		read := make([]func() any, len(columns))
		for i, c := range columns {
			dest[i], read[i] = scanDest(c)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan repo: %w", err)
		}

		var repo models.Repo
		fields := models.NewValues()
		for i, c := range columns {
			val := read[i]()
			if c == models.ColID {
				if id, ok := val.(int64); ok {
					repo.ID = id
				}
				continue
			}
			fields = fields.With(c, val)
		}
		repo.SetValues(fields)
		result = append(result, repo)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
