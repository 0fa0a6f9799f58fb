package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okatkov/taskpad/internal/core"
)

func TestMemoryTaskStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryTaskStore()
	defer store.Close()
	ctx := context.Background()

	tasks, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Empty(t, tasks)

	want := []*core.Task{
		core.NewTask("a", "one"),
		core.NewTask("b", "two"),
	}
	require.NoError(t, store.WriteAll(ctx, want))

	got, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].ID)
	require.Equal(t, "b", got[1].ID)
}

func TestMemoryTaskStore_ClonesInAndOut(t *testing.T) {
	t.Parallel()

	store := NewMemoryTaskStore()
	ctx := context.Background()

	in := []*core.Task{core.NewTask("a", "one")}
	require.NoError(t, store.WriteAll(ctx, in))

	// mutating the caller's slice must not leak into the store
	in[0].IsDone = true

	got, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.False(t, got[0].IsDone)

	// and mutating a read result must not leak either
	got[0].Title = "mutated"
	again, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, "one", again[0].Title)
}
