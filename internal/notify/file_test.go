package notify

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileNotifier_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "repos.db")
	require.NoError(t, os.WriteFile(db, []byte("a"), 0o600))

	n := NewFileNotifier(db, 0, nil)
	s, err := n.Subscribe(context.Background(), "repos/3")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(db+"-wal", []byte("b"), 0o600))

	select {
	case ev := <-s.Events():
		assert.Equal(t, "repos", ev.Address)
	case <-time.After(3 * time.Second):
		t.Fatal("no event for database write")
	}
}

func TestFileNotifier_Touches(t *testing.T) {
	n := NewFileNotifier("/data/repos.db", 0, nil)
	assert.True(t, n.touches("/data/repos.db"))
	assert.True(t, n.touches("/data/repos.db-journal"))
	assert.False(t, n.touches("/data/other.db"))
	assert.NoError(t, n.Notify(context.Background(), "repos"))
}

func TestFileNotifier_CloseEndsEvents(t *testing.T) {
	dir := t.TempDir()
	n := NewFileNotifier(filepath.Join(dir, "repos.db"), 0, nil)

	s, err := n.Subscribe(context.Background(), "repos")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	select {
	case _, ok := <-s.Events():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("events channel not closed")
	}
}

func TestCollectionAddress(t *testing.T) {
	assert.Equal(t, "repos", collectionAddress("repos/12"))
	assert.Equal(t, "repos", collectionAddress("repos"))
}
