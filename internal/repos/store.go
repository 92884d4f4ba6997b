package repos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/reposhelf/internal/common"
	"github.com/dmitrijs2005/reposhelf/internal/dbx"
	"github.com/dmitrijs2005/reposhelf/internal/logging"
	"github.com/dmitrijs2005/reposhelf/internal/models"
	"github.com/dmitrijs2005/reposhelf/internal/notify"
	"github.com/dmitrijs2005/reposhelf/internal/purge"
)

// Filter is an additional SQL predicate with '?' placeholders. It is ANDed
// with the target's own predicate. An empty Where adds nothing.
type Filter struct {
	Where string
	Args  []any
}

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// Query shapes a read. An empty Projection selects every column; an empty
// Order sorts by id.
type Query struct {
	Projection []string
	Filter     Filter
	Order      []Order
}

// WarningHandler receives non-fatal write warnings, such as a
// *ConsistencyWarning.
type WarningHandler func(ctx context.Context, target Target, warning error)

// Store is the repo record store.
type Store struct {
	db       dbx.DBTX
	dialect  dbx.Dialect
	log      logging.Logger
	notifier notify.Notifier
	purger   purge.Purger
	warn     WarningHandler

	purgeTimeout time.Duration
	purges       sync.WaitGroup
}

type Option func(*Store)

func WithDialect(d dbx.Dialect) Option { return func(s *Store) { s.dialect = d } }

func WithLogger(l logging.Logger) Option { return func(s *Store) { s.log = l } }

func WithNotifier(n notify.Notifier) Option { return func(s *Store) { s.notifier = n } }

func WithPurger(p purge.Purger) Option { return func(s *Store) { s.purger = p } }

func WithWarningHandler(h WarningHandler) Option { return func(s *Store) { s.warn = h } }

// WithPurgeTimeout bounds each background purge. Zero means no bound.
func WithPurgeTimeout(d time.Duration) Option { return func(s *Store) { s.purgeTimeout = d } }

// NewStore creates a Store over db. Without options it speaks SQLite, logs
// nothing, notifies nobody and purges nothing.
func NewStore(db dbx.DBTX, opts ...Option) *Store {
	s := &Store{
		db:       db,
		dialect:  dbx.SQLite,
		log:      logging.Nop(),
		notifier: notify.Discard,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Cursor is the result of a read. It stays subscribed to changes of the
// target it was read from until closed.
type Cursor struct {
	Repos  []models.Repo
	target Target
	sub    notify.Subscription
}

// Target is the address the cursor watches.
func (c *Cursor) Target() Target { return c.target }

// Changes delivers an event for each write that touches the target.
func (c *Cursor) Changes() <-chan notify.Event { return c.sub.Events() }

func (c *Cursor) Close() error { return c.sub.Close() }

// Query reads the records addressed by target.
func (s *Store) Query(ctx context.Context, target Target, q Query) (*Cursor, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}

	columns, err := projection(q.Projection)
	if err != nil {
		return nil, err
	}
	orderBy, err := orderClause(q.Order)
	if err != nil {
		return nil, err
	}

	// Subscribe first so a write racing the SELECT still reaches the cursor.
	sub, err := s.notifier.Subscribe(ctx, target.String())
	if err != nil {
		s.log.Error(ctx, "subscribe failed", "target", target.String(), "err", err)
		sub, _ = notify.Discard.Subscribe(ctx, target.String())
	}

	where, args := s.predicate(target, q.Filter)
	query := "SELECT " + strings.Join(columns, ", ") + " FROM " + common.RepoTable + where + orderBy

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to select repos: %w", err)
	}
	defer rows.Close()

	result, err := scanRepos(rows, columns)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}

	return &Cursor{Repos: result, target: target, sub: sub}, nil
}

// Insert creates a repo and returns its id.
func (s *Store) Insert(ctx context.Context, values models.Values) (int64, error) {
	values, warning, err := PrepareInsert(values)
	if err != nil {
		return 0, err
	}
	target := Collection()
	s.surface(ctx, target, warning)

	keys := values.Keys()
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i], _ = values.Get(k)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ")

	query := "INSERT INTO " + common.RepoTable + " (" + strings.Join(keys, ", ") + ") VALUES (" +
		placeholders + ") RETURNING " + models.ColID

	var id int64
	if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query), args...).Scan(&id); err != nil {
		return 0, wrapWriteError("failed to insert repo", err)
	}

	s.log.Info(ctx, "inserted repo", "id", id, "address", firstString(values, models.ColAddress))
	s.notify(ctx, target)
	return id, nil
}

// Update writes values to every record matched by target and filter and
// returns the number of rows changed. Snapshots already handed out are not
// touched; see models.Repo.SetValues.
func (s *Store) Update(ctx context.Context, target Target, values models.Values, filter Filter) (int64, error) {
	_, n, err := s.UpdateValues(ctx, target, values, filter)
	return n, err
}

// UpdateValues is Update that also returns the field-set actually written,
// after derived fields were added.
func (s *Store) UpdateValues(ctx context.Context, target Target, values models.Values, filter Filter) (models.Values, int64, error) {
	if err := target.validate(); err != nil {
		return models.Values{}, 0, err
	}

	values, warning, err := PrepareUpdate(values)
	if err != nil {
		return models.Values{}, 0, err
	}
	s.surface(ctx, target, warning)

	if values.Len() == 0 {
		return values, 0, nil
	}

	keys := values.Keys()
	sets := make([]string, len(keys))
	args := make([]any, 0, len(keys)+len(filter.Args)+1)
	for i, k := range keys {
		sets[i] = k + " = ?"
		v, _ := values.Get(k)
		args = append(args, v)
	}

	where, whereArgs := s.predicate(target, filter)
	args = append(args, whereArgs...)

	query := "UPDATE " + common.RepoTable + " SET " + strings.Join(sets, ", ") + where

	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return models.Values{}, 0, wrapWriteError("failed to update repo", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Values{}, 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	s.log.Info(ctx, "updated repos", "target", target.String(), "rows", n, "fields", strings.Join(keys, ","))
	s.notify(ctx, target)
	return values, n, nil
}

// Delete removes the record addressed by a single target. Deleting the
// whole collection is not allowed and reports 0 rows without touching the
// table. After a delete the repo's apps and apks are purged in the
// background; use Wait to drain pending purges.
func (s *Store) Delete(ctx context.Context, target Target, filter Filter) (int64, error) {
	if err := target.validate(); err != nil {
		return 0, err
	}
	if target.IsCollection() {
		s.log.Warn(ctx, "refusing to delete the whole repo collection")
		return 0, nil
	}

	where, args := s.predicate(target, filter)
	query := "DELETE FROM " + common.RepoTable + where

	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return 0, wrapWriteError("failed to delete repo", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	s.log.Info(ctx, "deleted repo", "target", target.String(), "rows", n)
	s.notify(ctx, target)
	if n > 0 {
		s.schedulePurge(ctx, target.ID())
	}
	return n, nil
}

// Wait blocks until every background purge started by Delete has finished.
func (s *Store) Wait() {
	s.purges.Wait()
}

func (s *Store) schedulePurge(ctx context.Context, id int64) {
	if s.purger == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	s.purges.Add(1)
	go func() {
		defer s.purges.Done()

		if s.purgeTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.purgeTimeout)
			defer cancel()
		}
		if err := s.purger.PurgeDependents(ctx, id); err != nil {
			s.log.Error(ctx, "purge of repo dependents failed", "repo", id, "err", err)
		}
	}()
}

func (s *Store) notify(ctx context.Context, target Target) {
	if err := s.notifier.Notify(ctx, target.String()); err != nil {
		s.log.Error(ctx, "change notification failed", "target", target.String(), "err", err)
	}
}

func (s *Store) surface(ctx context.Context, target Target, warning *ConsistencyWarning) {
	if warning == nil {
		return
	}
	s.log.Warn(ctx, "repo fingerprint does not match public key",
		"target", target.String(), "supplied", warning.Supplied, "calculated", warning.Calculated)
	if s.warn != nil {
		s.warn(ctx, target, warning)
	}
}

// predicate builds the WHERE clause for target plus the caller's filter.
func (s *Store) predicate(target Target, filter Filter) (string, []any) {
	var (
		parts []string
		args  []any
	)
	if target.IsSingle() {
		parts = append(parts, models.ColID+" = ?")
		args = append(args, target.ID())
	}
	if w := strings.TrimSpace(filter.Where); w != "" {
		parts = append(parts, "("+w+")")
		args = append(args, filter.Args...)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func projection(cols []string) ([]string, error) {
	if len(cols) == 0 {
		return models.AllColumns, nil
	}
	for _, c := range cols {
		if !models.IsColumn(c) {
			return nil, fmt.Errorf("%w: %q", common.ErrUnknownField, c)
		}
	}
	return cols, nil
}

func orderClause(order []Order) (string, error) {
	if len(order) == 0 {
		return " ORDER BY " + models.ColID + " ASC", nil
	}
	terms := make([]string, len(order))
	for i, o := range order {
		if !models.IsColumn(o.Column) {
			return "", fmt.Errorf("%w: %q", common.ErrUnknownField, o.Column)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		terms[i] = o.Column + " " + dir
	}
	return " ORDER BY " + strings.Join(terms, ", "), nil
}

func firstString(v models.Values, key string) string {
	s, _ := v.String(key)
	return s
}

// IsConsistencyWarning reports whether err is a fingerprint mismatch warning.
func IsConsistencyWarning(err error) bool {
	var w *ConsistencyWarning
	return errors.As(err, &w)
}
