package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/reposhelf/internal/common"
	"github.com/dmitrijs2005/reposhelf/internal/config"
	"github.com/dmitrijs2005/reposhelf/internal/fingerprint"
	"github.com/dmitrijs2005/reposhelf/internal/logging"
	"github.com/dmitrijs2005/reposhelf/internal/models"
	"github.com/dmitrijs2005/reposhelf/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	var cfg config.Config
	cfg.LoadDefaults()
	cfg.DSN = filepath.Join(t.TempDir(), "cli.db")
	cfg.LogLevel = "error"

	app, err := NewApp(context.Background(), &cfg, &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(DepsFor(app))
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAddAndList(t *testing.T) {
	app := newTestApp(t)

	out, err := execute(t, app, "add", "https://example.org/fdroid/repo")
	require.NoError(t, err)
	assert.Equal(t, "added repos/1\n", out)

	out, err = execute(t, app, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "example.org/fdroid/repo")
	assert.Contains(t, out, "Total: 1 repositories")
}

func TestList_EmptyAndFormats(t *testing.T) {
	app := newTestApp(t)

	out, err := execute(t, app, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No repositories configured.")

	_, err = execute(t, app, "add", "https://a.example", "--priority", "3", "--disabled")
	require.NoError(t, err)

	out, err = execute(t, app, "list", "-o", "json")
	require.NoError(t, err)
	var views []repoView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, 3, views[0].Priority)
	assert.False(t, views[0].InUse)

	out, err = execute(t, app, "list", "--enabled", "-o", "yaml")
	require.NoError(t, err)
	var none []repoView
	require.NoError(t, yaml.Unmarshal([]byte(out), &none))
	assert.Empty(t, none)

	_, err = execute(t, app, "list", "-o", "xml")
	require.Error(t, err)
}

func TestAdd_WithPubkeyShowsFingerprint(t *testing.T) {
	app := newTestApp(t)

	out, err := execute(t, app, "add", "https://example.org/repo", "--pubkey", "0102030405", "-o", "json")
	require.NoError(t, err)

	var v repoView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, fingerprint.Compute("0102030405"), v.Fingerprint)

	out, err = execute(t, app, "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, fingerprint.Format(fingerprint.Compute("0102030405")))
}

func TestShow_ByAddressAndPath(t *testing.T) {
	app := newTestApp(t)
	_, err := execute(t, app, "add", "https://example.org/repo", "--name", "Example")
	require.NoError(t, err)

	out, err := execute(t, app, "show", "https://example.org/repo")
	require.NoError(t, err)
	assert.Contains(t, out, "Example")

	out, err = execute(t, app, "show", "repos/1", "-o", "yaml")
	require.NoError(t, err)
	var v repoView
	require.NoError(t, yaml.Unmarshal([]byte(out), &v))
	assert.Equal(t, int64(1), v.ID)

	_, err = execute(t, app, "show", "42")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSet_AppliesRules(t *testing.T) {
	app := newTestApp(t)
	_, err := execute(t, app, "add", "https://a.example/repo")
	require.NoError(t, err)

	out, err := execute(t, app, "set", "1", "address=https://b.example/repo", "priority=4", "-o", "json")
	require.NoError(t, err)

	var v repoView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "b.example/repo", v.Name)
	assert.Equal(t, 4, v.Priority)

	_, err = execute(t, app, "set", "1", "colour=red")
	require.ErrorIs(t, err, common.ErrUnknownField)

	_, err = execute(t, app, "set", "1", "address=")
	require.ErrorIs(t, err, common.ErrMissingRequiredField)

	_, err = execute(t, app, "set", "1", "nonsense")
	require.Error(t, err)
}

func TestEnableDisable(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	_, err := app.Repos.Insert(ctx, models.ValuesOf(map[string]any{
		models.ColAddress:  "https://a.example",
		models.ColLastETag: "etag",
	}))
	require.NoError(t, err)

	_, err = execute(t, app, "disable", "1")
	require.NoError(t, err)
	r, err := app.Repos.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, r.InUse)
	assert.Nil(t, r.LastETag)

	_, err = execute(t, app, "enable", "1")
	require.NoError(t, err)
	r, err = app.Repos.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, r.InUse)
}

func TestRemoveAndPurge(t *testing.T) {
	app := newTestApp(t)
	_, err := execute(t, app, "add", "https://a.example")
	require.NoError(t, err)

	out, err := execute(t, app, "purge", "1")
	require.NoError(t, err)
	assert.Equal(t, "purged 0 apks and 0 apps\n", out)

	out, err = execute(t, app, "rm", "1")
	require.NoError(t, err)
	assert.Equal(t, "removed repos/1\n", out)

	_, err = execute(t, app, "rm", "1")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = execute(t, app, "rm", "repos")
	require.Error(t, err)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatch_PrintsEvents(t *testing.T) {
	app := newTestApp(t)
	out := &syncBuffer{}

	cmd := NewRootCmd(DepsFor(app))
	cmd.SetArgs([]string{"watch", "--count", "1"})
	cmd.SetOut(out)

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(context.Background()) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "watching repos")
	}, 2*time.Second, 10*time.Millisecond)

	_, err := app.Repos.Insert(context.Background(), models.ValuesOf(map[string]any{models.ColAddress: "https://a.example"}))
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return")
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "repos")
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCmd(&Deps{})
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Build version:")
}

func TestRun_SplitsConfigFlags(t *testing.T) {
	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })

	dsn := filepath.Join(dir, "run.db")
	var stdout, stderr bytes.Buffer

	code, err := Run(context.Background(), []string{"add", "https://a.example", "-dsn", dsn, "-log-level", "error"}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "added repos/1\n", stdout.String())

	stdout.Reset()
	code, err = Run(context.Background(), []string{"-dsn", dsn, "-log-level", "error", "list", "-o", "json"}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "https://a.example")

	code, err = Run(context.Background(), []string{"-driver", "oracle", "list"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Equal(t, 2, code)

	code, err = Run(context.Background(), []string{"-dsn", dsn, "show", "99"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Equal(t, 1, code)
}

func TestParseAssignments(t *testing.T) {
	v, err := parseAssignments([]string{"name=x=y", "lastetag=null"})
	require.NoError(t, err)
	name, _ := v.String(models.ColName)
	assert.Equal(t, "x=y", name)
	assert.True(t, v.IsNull(models.ColLastETag))

	_, err = parseAssignments([]string{"=v"})
	require.Error(t, err)
}

func TestNotifier_FileBackendWatchesDSNPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repos.db")

	tests := []struct {
		name     string
		dsn      string
		wantPath string
		wantErr  bool
	}{
		{name: "plain path", dsn: path, wantPath: path},
		{name: "uri with params", dsn: "file:" + path + "?_pragma=foreign_keys(1)", wantPath: path},
		{name: "in memory", dsn: ":memory:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg config.Config
			cfg.LoadDefaults()
			cfg.NotifyBackend = config.NotifyFile
			cfg.DSN = tt.dsn

			a := &App{Config: &cfg, Log: logging.Nop()}
			n, err := a.notifier(&cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			fn, ok := n.(*notify.FileNotifier)
			require.True(t, ok)
			assert.Equal(t, tt.wantPath, fn.Path())
		})
	}
}
