package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/okatkov/taskpad/internal/core"
	"github.com/okatkov/taskpad/internal/storage/docfile"
)

// FileTaskStore keeps the task list as one JSON file on disk. The mutex
// only guards this process; two processes sharing the path can still
// lose updates to each other, same as any document variant.
type FileTaskStore struct {
	path string

	mu sync.Mutex
}

func NewFileTaskStore(path string) (*FileTaskStore, error) {
	if path == "" {
		return nil, errors.New("storage: required file path")
	}
	return &FileTaskStore{path: path}, nil
}

func (st *FileTaskStore) Close() error {
	return nil
}

func (st *FileTaskStore) ReadAll(ctx context.Context) ([]*core.Task, error) {
	const op = "storage.FileTaskStore.ReadAll"

	st.mu.Lock()
	defer st.mu.Unlock()

	tasks, err := docfile.Read(ctx, st.path)
	if err != nil {
		return nil, core.NewBackendUnavailableError("file read", err, op)
	}
	return tasks, nil
}

func (st *FileTaskStore) WriteAll(ctx context.Context, tasks []*core.Task) error {
	const op = "storage.FileTaskStore.WriteAll"

	st.mu.Lock()
	defer st.mu.Unlock()

	if err := docfile.Write(ctx, st.path, tasks); err != nil {
		return core.NewBackendUnavailableError("file write", err, op)
	}
	return nil
}
