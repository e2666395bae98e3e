package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_LoadMissingIsEmpty(t *testing.T) {
	s := openTestStore(t)

	snap, err := s.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestStore_SaveLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snap := session.Snapshot{LaunchID: "l1", RootItemID: "r1", StepItemID: "s1"}
	require.NoError(t, s.Save(ctx, "ci", snap))

	got, err := s.Load(ctx, "ci")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	t.Run("save overwrites", func(t *testing.T) {
		snap.StepItemID = ""
		require.NoError(t, s.Save(ctx, "ci", snap))

		got, err := s.Load(ctx, "ci")
		require.NoError(t, err)
		assert.Equal(t, "", got.StepItemID)
		assert.Equal(t, "r1", got.RootItemID)
	})
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "ci", session.Snapshot{LaunchID: "l1"}))
	require.NoError(t, s.Delete(ctx, "ci"))

	got, err := s.Load(ctx, "ci")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestStore_List(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "b", session.Snapshot{LaunchID: "lb"}))
	require.NoError(t, s.Save(ctx, "a", session.Snapshot{LaunchID: "la"}))

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Name)
	assert.Equal(t, "la", records[0].Snapshot.LaunchID)
	assert.Equal(t, "b", records[1].Name)
	assert.False(t, records[1].UpdatedAt.IsZero())
}

func TestStore_Bind(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, DefaultName, session.Snapshot{LaunchID: "l1"}))

	state := session.New()
	save, err := s.Bind(ctx, DefaultName, state)
	require.NoError(t, err)
	assert.Equal(t, "l1", state.LaunchID())

	state.Set(session.LevelRoot, "r1")
	require.NoError(t, save())

	got, err := s.Load(ctx, DefaultName)
	require.NoError(t, err)
	assert.Equal(t, session.Snapshot{LaunchID: "l1", RootItemID: "r1"}, got)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "ci", session.Snapshot{LaunchID: "l1"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, path, s.Path())

	got, err := s.Load(ctx, "ci")
	require.NoError(t, err)
	assert.Equal(t, "l1", got.LaunchID)
}
