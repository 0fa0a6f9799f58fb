package service

import (
	"context"
	"strings"

	"github.com/okatkov/taskpad/internal/core"
)

// crudStore is what the façade needs from the fallback controller.
type crudStore interface {
	ReadAll(ctx context.Context) ([]*core.Task, error)
	Append(ctx context.Context, task *core.Task) (*core.Task, error)
	SetDone(ctx context.Context, id string, done bool) error
	Remove(ctx context.Context, id string) error
}

// TaskService is the CRUD façade all callers go through. It owns
// validation and id generation; which backend actually holds the data
// is the fallback controller's problem.
type TaskService struct {
	store crudStore
	idGen IDGenerator
}

func NewTaskService(store crudStore, idGen IDGenerator) (*TaskService, error) {
	const op = "service.NewTaskService"
	if store == nil {
		return nil, core.NewAppErrorBuilder(core.ErrorCodeInternal).
			Message("task store required").
			SafeToShow(false).
			Oper(op).
			Build()
	}
	if idGen == nil {
		return nil, core.NewAppErrorBuilder(core.ErrorCodeInternal).
			Message("id gen required").
			SafeToShow(false).
			Oper(op).
			Build()
	}
	return &TaskService{
		store: store,
		idGen: idGen,
	}, nil
}

// ListTasks returns the full list, insertion order, unmodified.
func (ts *TaskService) ListTasks(ctx context.Context) ([]*core.Task, error) {
	const op = "service.TaskService.ListTasks"

	if err := ctx.Err(); err != nil {
		return nil, internalError(op, "ctx error", err)
	}

	tasks, err := ts.store.ReadAll(ctx)
	if err != nil {
		return nil, tryAsAppError(err, op)
	}
	if tasks == nil {
		tasks = []*core.Task{}
	}
	return tasks, nil
}

func (ts *TaskService) CreateTask(ctx context.Context, title string) (*core.Task, error) {
	const op = "service.TaskService.CreateTask"

	if err := ctx.Err(); err != nil {
		return nil, internalError(op, "ctx error", err)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, core.NewTaskValidationError("title required", nil, op)
	}

	id, genErr := ts.idGen.NewID()
	if genErr != nil {
		return nil, internalError(op, "gen id error", genErr)
	}

	t := core.NewTask(id, title)
	stored, err := ts.store.Append(ctx, t)
	if err != nil {
		return nil, tryAsAppError(err, op)
	}
	return stored.CloneTask(), nil
}

// SetTaskDone updates the done flag. An unknown id succeeds without
// changing anything.
func (ts *TaskService) SetTaskDone(ctx context.Context, id string, done bool) error {
	const op = "service.TaskService.SetTaskDone"

	if err := ctx.Err(); err != nil {
		return internalError(op, "ctx error", err)
	}
	if id == "" {
		return core.NewTaskValidationError("task id required", nil, op)
	}

	if err := ts.store.SetDone(ctx, id, done); err != nil {
		return tryAsAppError(err, op)
	}
	return nil
}

// RemoveTask deletes by id, with the same no-op-if-absent semantics.
func (ts *TaskService) RemoveTask(ctx context.Context, id string) error {
	const op = "service.TaskService.RemoveTask"

	if err := ctx.Err(); err != nil {
		return internalError(op, "ctx error", err)
	}
	if id == "" {
		return core.NewTaskValidationError("task id required", nil, op)
	}

	if err := ts.store.Remove(ctx, id); err != nil {
		return tryAsAppError(err, op)
	}
	return nil
}

func internalError(op, msg string, err error) *core.AppError {
	return core.NewTaskInternalError(msg, err, op)
}

// tryAsAppError keeps an AppError as-is and wraps everything else as
// internal, so handlers never leak raw store errors.
func tryAsAppError(err error, op string) error {
	if appErr, ok := core.AsAppError(err); ok {
		return appErr.WithOper(op)
	}
	return internalError(op, "storage error", err)
}
