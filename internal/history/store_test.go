package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	assert.Equal(t, "history.db", filepath.Base(store.Path()))
}

func TestRecordFillsDefaults(t *testing.T) {
	t.Parallel()
	store := openStore(t)

	run := &Run{Trigger: "render", OutputPath: "changelog.md"}
	require.NoError(t, store.Record(run))

	_, err := uuid.Parse(run.ID)
	assert.NoError(t, err)
	assert.False(t, run.StartedAt.IsZero())
	assert.Equal(t, StatusOK, run.Status)

	failed := &Run{Trigger: "render", Error: "boom"}
	require.NoError(t, store.Record(failed))
	assert.Equal(t, StatusFailed, failed.Status)
}

func TestRecordAndGet(t *testing.T) {
	t.Parallel()
	store := openStore(t)

	started := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	run := &Run{
		StartedAt:   started,
		Trigger:     "watch",
		FromVersion: "5.4",
		ToVersion:   "6.0",
		ChangesPath: "changes.yaml",
		OutputPath:  "changelog.md",
		Modules:     2,
		Messages:    25,
		Digest:      Digest([]byte("content")),
		Duration:    1500 * time.Millisecond,
	}
	require.NoError(t, store.Record(run))

	got, err := store.Get(run.ID)
	require.NoError(t, err)
	assert.True(t, started.Equal(got.StartedAt), "started_at %v", got.StartedAt)
	assert.Equal(t, "watch", got.Trigger)
	assert.Equal(t, "5.4", got.FromVersion)
	assert.Equal(t, "6.0", got.ToVersion)
	assert.Equal(t, 2, got.Modules)
	assert.Equal(t, 25, got.Messages)
	assert.Equal(t, run.Digest, got.Digest)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.Equal(t, StatusOK, got.Status)
}

func TestGetUnknown(t *testing.T) {
	t.Parallel()
	store := openStore(t)

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecentNewestFirst(t *testing.T) {
	t.Parallel()
	store := openStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(&Run{
			ID:        string(rune('a' + i)),
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Trigger:   "render",
		}))
	}

	runs, err := store.Recent(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "e", runs[0].ID)
	assert.Equal(t, "d", runs[1].ID)
	assert.Equal(t, "c", runs[2].ID)
}

func TestLastSuccessful(t *testing.T) {
	t.Parallel()
	store := openStore(t)

	_, ok, err := store.LastSuccessful("changelog.md")
	require.NoError(t, err)
	assert.False(t, ok)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(&Run{ID: "old", StartedAt: base, OutputPath: "changelog.md", Digest: "d1"}))
	require.NoError(t, store.Record(&Run{ID: "new", StartedAt: base.Add(time.Hour), OutputPath: "changelog.md", Digest: "d2"}))
	require.NoError(t, store.Record(&Run{ID: "broken", StartedAt: base.Add(2 * time.Hour), OutputPath: "changelog.md", Error: "bad input"}))
	require.NoError(t, store.Record(&Run{ID: "other", StartedAt: base.Add(3 * time.Hour), OutputPath: "other.md"}))

	run, ok, err := store.LastSuccessful("changelog.md")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", run.ID)
	assert.Equal(t, "d2", run.Digest)
}

func TestDigest(t *testing.T) {
	assert.Equal(t, Digest([]byte("a")), Digest([]byte("a")))
	assert.NotEqual(t, Digest([]byte("a")), Digest([]byte("b")))
	assert.Len(t, Digest(nil), 64)
}

func TestReopenKeepsRuns(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(&Run{ID: "persisted", Trigger: "render"}))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	run, err := store.Get("persisted")
	require.NoError(t, err)
	assert.Equal(t, "render", run.Trigger)
}
