package storage

import (
	"context"

	"github.com/okatkov/taskpad/internal/core"
)

// TaskStore is the minimal contract every backend variant satisfies.
// ReadAll returns the full stored sequence, insertion order preserved.
// Implementations never interpret the list; ownership of fallback and
// retry decisions sits with the caller.
type TaskStore interface {
	ReadAll(ctx context.Context) ([]*core.Task, error)

	Close() error
}

// DocumentWriter is the capability of backends that hold the whole
// store as one document: WriteAll replaces the stored sequence in a
// single put, with no partial-write visibility. Two concurrent
// read-modify-write sequences can lose an update; that race is a
// property of the document design, not a bug in a variant.
type DocumentWriter interface {
	WriteAll(ctx context.Context, tasks []*core.Task) error
}

// TaskProxy is the capability of the remote variant: CRUD is forwarded
// per-operation to an upstream implementing the same HTTP contract, so
// there is no local document to rewrite.
type TaskProxy interface {
	CreateTask(ctx context.Context, title string) (*core.Task, error)
	SetTaskDone(ctx context.Context, id string, done bool) error
	RemoveTask(ctx context.Context, id string) error
}
