package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okatkov/taskpad/internal/core"
)

func TestBoltTaskStore_WriteReadReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "t.db")
	store, err := NewBoltTaskStore(dbPath)
	require.NoError(t, err)

	ctx := context.Background()

	// fresh store reads as empty
	tasks, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Empty(t, tasks)

	want := []*core.Task{
		core.NewTask("simon-1", "walk the dog"),
		{ID: "simon-2", Title: "drink coffee", IsDone: true},
	}
	require.NoError(t, store.WriteAll(ctx, want))

	tasks, err = store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, "simon-1", tasks[0].ID)
	require.True(t, tasks[1].IsDone)

	// order survives a full rewrite and a reopen
	want[0].IsDone = true
	require.NoError(t, store.WriteAll(ctx, want))
	require.NoError(t, store.Close())

	store, err = NewBoltTaskStore(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	tasks, err = store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.True(t, tasks[0].IsDone)
	require.Equal(t, "simon-2", tasks[1].ID)
}

func TestBoltTaskStore_RequiredPath(t *testing.T) {
	t.Parallel()

	_, err := NewBoltTaskStore("")
	require.Error(t, err)
}
