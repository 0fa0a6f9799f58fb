package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okatkov/taskpad/internal/core"
	"github.com/okatkov/taskpad/internal/storage"
)

type stubIDGen struct {
	mu  sync.Mutex
	ids []string
}

func (g *stubIDGen) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.ids) == 0 {
		return "", errors.New("no ids")
	}
	id := g.ids[0]
	g.ids = g.ids[1:]
	return id, nil
}

func newTestService(t *testing.T, ids ...string) *TaskService {
	t.Helper()

	idList := append([]string(nil), ids...)
	if len(idList) == 0 {
		idList = []string{"simon-t"}
	}
	store := NewFallbackStore(&FallbackOptions{
		Memory: storage.NewMemoryTaskStore(),
	})
	t.Cleanup(func() { _ = store.Close() })

	svc, err := NewTaskService(store, &stubIDGen{ids: idList})
	require.NoError(t, err)
	return svc
}

func TestTaskService_CreateAndList(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "simon")
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "  walk the dog  ") // it will be trimmed
	require.NoError(t, err)
	require.Equal(t, "simon", task.ID)
	require.Equal(t, "walk the dog", task.Title)
	require.False(t, task.IsDone)

	// returned task is a clone, mutating it must not touch the store
	task.IsDone = true

	list, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "simon", list[0].ID)
	require.False(t, list[0].IsDone)
}

func TestTaskService_CreateValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "simon")
	ctx := context.Background()

	for _, title := range []string{"", "   "} {
		_, err := svc.CreateTask(ctx, title)
		require.Error(t, err)
		appErr, ok := core.AsAppError(err)
		require.True(t, ok)
		require.Equal(t, core.ErrorCodeValidation, appErr.Code)
	}

	list, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestTaskService_UniqueIDs(t *testing.T) {
	t.Parallel()

	store := NewFallbackStore(&FallbackOptions{})
	svc, err := NewTaskService(store, NewRandomIDGenerator("task-"))
	require.NoError(t, err)

	ctx := context.Background()
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		task, createErr := svc.CreateTask(ctx, "dedup me")
		require.NoError(t, createErr)
		require.False(t, seen[task.ID], "duplicate id %q", task.ID)
		seen[task.ID] = true
	}
}

func TestTaskService_SetDoneIdempotent(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "simon")
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "wash dishes")
	require.NoError(t, err)

	require.NoError(t, svc.SetTaskDone(ctx, task.ID, true))
	require.NoError(t, svc.SetTaskDone(ctx, task.ID, true))

	list, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.True(t, list[0].IsDone)

	require.NoError(t, svc.SetTaskDone(ctx, task.ID, false))
	list, err = svc.ListTasks(ctx)
	require.NoError(t, err)
	require.False(t, list[0].IsDone)
}

func TestTaskService_MissingIDIsNoOp(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "simon")
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, "keep me")
	require.NoError(t, err)

	require.NoError(t, svc.SetTaskDone(ctx, "nonexistent", true))
	require.NoError(t, svc.RemoveTask(ctx, "nonexistent"))

	list, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "keep me", list[0].Title)
	require.False(t, list[0].IsDone)
}

func TestTaskService_RemoveRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "first", "second")
	ctx := context.Background()

	a, err := svc.CreateTask(ctx, "one")
	require.NoError(t, err)
	b, err := svc.CreateTask(ctx, "two")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveTask(ctx, a.ID))

	list, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, b.ID, list[0].ID)
}

func TestTaskService_EmptyID(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	err := svc.SetTaskDone(ctx, "", true)
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, core.ErrorCodeValidation, appErr.Code)

	err = svc.RemoveTask(ctx, "")
	appErr, ok = core.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, core.ErrorCodeValidation, appErr.Code)
}
