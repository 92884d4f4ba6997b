package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/reposhelf/internal/common"
	"github.com/dmitrijs2005/reposhelf/internal/database"
	"github.com/dmitrijs2005/reposhelf/internal/fingerprint"
	"github.com/dmitrijs2005/reposhelf/internal/models"
	"github.com/dmitrijs2005/reposhelf/internal/notify"
	"github.com/dmitrijs2005/reposhelf/internal/purge"
	"github.com/dmitrijs2005/reposhelf/internal/repos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	db    *sql.DB
	store *repos.Store
	svc   RepoService
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	db, dialect, err := database.OpenAndMigrate(ctx, "sqlite", filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	p := purge.NewSQLPurger(db, dialect, nil)
	store := repos.NewStore(db, repos.WithDialect(dialect), repos.WithPurger(p), repos.WithNotifier(notify.NewBroker(4, nil)))
	t.Cleanup(store.Wait)

	return &env{db: db, store: store, svc: NewRepoService(store, p)}
}

func (e *env) seedApks(t *testing.T, repoID int64) {
	t.Helper()
	_, err := e.db.Exec(`INSERT INTO app (id, package_name) VALUES (1, 'org.example.one'), (2, 'org.example.two')`)
	require.NoError(t, err)
	_, err = e.db.Exec(`INSERT INTO apk (app_id, repo) VALUES (1, ?), (2, ?), (2, 9999)`, repoID, repoID)
	require.NoError(t, err)
}

func (e *env) countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestRepoService_FindByID(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	id, err := e.svc.Insert(ctx, models.ValuesOf(map[string]any{models.ColAddress: "https://example.org/repo"}))
	require.NoError(t, err)

	r, err := e.svc.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, r.ID)
	assert.Equal(t, "example.org/repo", r.Name)

	_, err = e.svc.FindByID(ctx, id+100)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRepoService_FindByAddress(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	first, err := e.svc.Insert(ctx, models.ValuesOf(map[string]any{models.ColAddress: "https://dup.example"}))
	require.NoError(t, err)
	_, err = e.svc.Insert(ctx, models.ValuesOf(map[string]any{models.ColAddress: "https://dup.example", models.ColName: "second"}))
	require.NoError(t, err)

	r, err := e.svc.FindByAddress(ctx, "https://dup.example")
	require.NoError(t, err)
	assert.Equal(t, first, r.ID)

	_, err = e.svc.FindByAddress(ctx, "https://missing.example")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRepoService_All(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	all, err := e.svc.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	for _, a := range []string{"https://a.example", "https://b.example"} {
		_, err := e.svc.Insert(ctx, models.ValuesOf(map[string]any{models.ColAddress: a}))
		require.NoError(t, err)
	}

	all, err = e.svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Less(t, all[0].ID, all[1].ID)
}

func TestRepoService_UpdateAbsorbsDerivedFields(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	id, err := e.svc.Insert(ctx, models.ValuesOf(map[string]any{
		models.ColAddress:  "https://a.example/repo",
		models.ColLastETag: "etag",
	}))
	require.NoError(t, err)

	r, err := e.svc.FindByID(ctx, id)
	require.NoError(t, err)

	n, err := e.svc.Update(ctx, r, models.ValuesOf(map[string]any{
		models.ColAddress:   "https://b.example/repo",
		models.ColPublicKey: "0102030405",
		models.ColInUse:     false,
	}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Equal(t, "https://b.example/repo", r.Address)
	assert.Equal(t, "b.example/repo", r.Name)
	assert.Equal(t, fingerprint.Compute("0102030405"), r.Fingerprint)
	assert.False(t, r.InUse)
	assert.Nil(t, r.LastETag)

	stored, err := e.svc.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, *stored, *r)
}

func TestRepoService_UpdateFailureLeavesSnapshot(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	id, err := e.svc.Insert(ctx, models.ValuesOf(map[string]any{models.ColAddress: "https://a.example"}))
	require.NoError(t, err)
	r, err := e.svc.FindByID(ctx, id)
	require.NoError(t, err)
	before := *r

	_, err = e.svc.Update(ctx, r, models.ValuesOf(map[string]any{models.ColAddress: ""}))
	require.ErrorIs(t, err, common.ErrMissingRequiredField)
	assert.Equal(t, before, *r)
}

func TestRepoService_RemovePurgesInBackground(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	id, err := e.svc.Insert(ctx, models.ValuesOf(map[string]any{models.ColAddress: "https://a.example"}))
	require.NoError(t, err)
	e.seedApks(t, id)

	n, err := e.svc.Remove(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	e.store.Wait()
	assert.Equal(t, 1, e.countRows(t, "apk"))
	assert.Equal(t, 1, e.countRows(t, "app"))
}

func TestRepoService_PurgeAppsKeepsRepo(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	id, err := e.svc.Insert(ctx, models.ValuesOf(map[string]any{models.ColAddress: "https://a.example"}))
	require.NoError(t, err)
	e.seedApks(t, id)

	res, err := e.svc.PurgeApps(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, purge.Result{Apks: 2, Apps: 1}, res)

	_, err = e.svc.FindByID(ctx, id)
	require.NoError(t, err)
}

func TestRepoService_Watch(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	c, err := e.svc.Watch(ctx, repos.Collection())
	require.NoError(t, err)
	defer c.Close()

	_, err = e.svc.Insert(ctx, models.ValuesOf(map[string]any{models.ColAddress: "https://a.example"}))
	require.NoError(t, err)

	select {
	case ev := <-c.Changes():
		assert.Equal(t, common.CollectionPath, ev.Address)
	case <-time.After(time.Second):
		t.Fatal("no change event")
	}
}
