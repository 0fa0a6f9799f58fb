package storage

import (
	"context"
	"sync"

	"github.com/okatkov/taskpad/internal/core"
)

// MemoryTaskStore holds the task list in process memory. It is the
// fallback floor: constructing it cannot fail and its operations only
// fail on a dead context. State is gone on process exit.
//
// The store is an explicit handle, constructed once and passed where it
// is needed. There is deliberately no package-level instance.
type MemoryTaskStore struct {
	tasks []*core.Task

	mu sync.RWMutex
}

func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{}
}

func (st *MemoryTaskStore) Close() error {
	return nil
}

func (st *MemoryTaskStore) ReadAll(ctx context.Context) ([]*core.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st.mu.RLock()
	defer st.mu.RUnlock()
	return core.CloneTasks(st.tasks), nil
}

func (st *MemoryTaskStore) WriteAll(ctx context.Context, tasks []*core.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.tasks = core.CloneTasks(tasks)
	return nil
}
