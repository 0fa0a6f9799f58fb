package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/okatkov/taskpad/internal/core"
	"github.com/okatkov/taskpad/internal/storage"
)

// Tier names the storage level the fallback controller is running on.
// Transitions only ever go down: durable -> remote -> memory. Once a
// tier failed it is never re-attempted for the life of the process,
// which keeps reads and writes consistent within one invocation chain
// at the cost of never recovering without a restart.
type Tier string

const (
	TierUninitialized Tier = "uninitialized"
	TierDurable       Tier = "durable"
	TierRemote        Tier = "remote"
	TierMemory        Tier = "memory"
)

// StoreOpener builds a tier's store on first use. Openers run at most
// once; an opener returning an error counts as that tier failing.
type StoreOpener func(ctx context.Context) (storage.TaskStore, error)

type FallbackOptions struct {
	// OpenDurable is nil when no durable store is configured and the
	// tier is skipped. Same for OpenRemote.
	OpenDurable StoreOpener
	OpenRemote  StoreOpener

	// Memory is the floor. Defaults to a fresh MemoryTaskStore.
	Memory storage.TaskStore

	// Seed is written when the tier selected at initialization is
	// empty. Never written to the remote tier: that store belongs to
	// the upstream.
	Seed []*core.Task

	Logger *zap.Logger
}

// FallbackStore picks exactly one active backend per process, lazily on
// the first operation, and demotes permanently when the active one
// fails. A failing operation is retried once against the new tier
// before any error surfaces.
type FallbackStore struct {
	openDurable StoreOpener
	openRemote  StoreOpener
	memory      storage.TaskStore
	seed        []*core.Task
	logger      *zap.Logger

	mu     sync.Mutex
	inited bool
	tier   Tier
	active storage.TaskStore
}

func NewFallbackStore(opts *FallbackOptions) *FallbackStore {
	if opts == nil {
		opts = &FallbackOptions{}
	}
	mem := opts.Memory
	if mem == nil {
		mem = storage.NewMemoryTaskStore()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackStore{
		openDurable: opts.OpenDurable,
		openRemote:  opts.OpenRemote,
		memory:      mem,
		seed:        core.CloneTasks(opts.Seed),
		logger:      logger,
		tier:        TierUninitialized,
	}
}

// Tier reports the currently active tier.
func (f *FallbackStore) Tier() Tier {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tier
}

func (f *FallbackStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == nil {
		return nil
	}
	err := f.active.Close()
	f.active = nil
	return err
}

func (f *FallbackStore) ReadAll(ctx context.Context) ([]*core.Task, error) {
	var res []*core.Task
	err := f.do(ctx, func(st storage.TaskStore) error {
		tasks, err := st.ReadAll(ctx)
		if err != nil {
			return err
		}
		res = tasks
		return nil
	})
	return res, err
}

// Append stores task as the newest record and returns the stored
// version. On the remote tier the upstream may assign its own body;
// that record wins over the locally constructed one.
func (f *FallbackStore) Append(ctx context.Context, task *core.Task) (*core.Task, error) {
	var res *core.Task
	err := f.do(ctx, func(st storage.TaskStore) error {
		stored, err := appendTask(ctx, st, task)
		if err != nil {
			return err
		}
		res = stored
		return nil
	})
	return res, err
}

// SetDone flips the done flag of id. An absent id is a successful
// no-op: the caller cannot tell "already in the desired state" from
// "not found" and does not need to.
func (f *FallbackStore) SetDone(ctx context.Context, id string, done bool) error {
	return f.do(ctx, func(st storage.TaskStore) error {
		return setDone(ctx, st, id, done)
	})
}

// Remove deletes id. Same silent no-op semantics as SetDone.
func (f *FallbackStore) Remove(ctx context.Context, id string) error {
	return f.do(ctx, func(st storage.TaskStore) error {
		return removeTask(ctx, st, id)
	})
}

// do runs op against the active store. On failure it demotes one tier
// and retries op exactly once there.
func (f *FallbackStore) do(ctx context.Context, op func(storage.TaskStore) error) error {
	st, err := f.initialize(ctx)
	if err != nil {
		return err
	}

	opErr := op(st)
	if opErr == nil {
		return nil
	}
	if ctx.Err() != nil {
		// a dead context is the caller's doing, not the tier's
		return opErr
	}

	next := f.demote(st, opErr)
	if next == nil {
		return opErr
	}
	retryErr := op(next)
	if retryErr != nil && ctx.Err() == nil {
		// the retry tier failed too; mark it dead, but only one
		// retry per operation
		f.demote(next, retryErr)
	}
	return retryErr
}

// initialize selects the starting tier. Idempotent: after the first
// call it hands back the active store without re-attempting anything.
func (f *FallbackStore) initialize(ctx context.Context) (storage.TaskStore, error) {
	const op = "service.FallbackStore.initialize"

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inited {
		if f.active == nil {
			return nil, core.NewTaskInternalError("store closed", nil, op)
		}
		return f.active, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if f.openDurable != nil {
		st, err := f.openDurable(ctx)
		if err == nil {
			if err = f.seedIfEmpty(ctx, st); err == nil {
				f.setActiveLocked(TierDurable, st)
				return st, nil
			}
			_ = st.Close()
		}
		f.logger.Warn("durable tier failed, falling back",
			zap.Error(err),
		)
	}

	if f.openRemote != nil {
		st, err := f.openRemote(ctx)
		if err == nil {
			f.setActiveLocked(TierRemote, st)
			return st, nil
		}
		f.logger.Warn("remote tier failed, falling back",
			zap.Error(err),
		)
	}

	if err := f.seedIfEmpty(ctx, f.memory); err != nil {
		return nil, core.NewTaskInternalError("seed memory store", err, op)
	}
	f.setActiveLocked(TierMemory, f.memory)
	return f.memory, nil
}

func (f *FallbackStore) setActiveLocked(tier Tier, st storage.TaskStore) {
	f.inited = true
	f.tier = tier
	f.active = st
	f.logger.Info("storage tier selected", zap.String("tier", string(tier)))
}

// seedIfEmpty writes the seed set when the store has no records yet.
// Existence check and write are two steps, not a compare-and-set: two
// cold starts racing here can double-seed. Accepted, there is no
// cross-instance coordination to lean on.
func (f *FallbackStore) seedIfEmpty(ctx context.Context, st storage.TaskStore) error {
	if len(f.seed) == 0 {
		return nil
	}
	w, ok := st.(storage.DocumentWriter)
	if !ok {
		return nil
	}
	existing, err := st.ReadAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return w.WriteAll(ctx, core.CloneTasks(f.seed))
}

// demote switches to the next tier down, permanently. Returns nil when
// there is nothing below the failed tier (or when another request
// already demoted past it).
func (f *FallbackStore) demote(failed storage.TaskStore, cause error) storage.TaskStore {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.active != failed {
		// someone else demoted first; let the caller retry there
		return f.active
	}

	from := f.tier
	switch f.tier {
	case TierDurable:
		_ = f.active.Close()
		if f.openRemote != nil {
			if st, err := f.openRemote(context.Background()); err == nil {
				f.tier = TierRemote
				f.active = st
				f.logDemotion(from, cause)
				return st
			}
		}
		f.tier = TierMemory
		f.active = f.memory
	case TierRemote:
		_ = f.active.Close()
		f.tier = TierMemory
		f.active = f.memory
	default:
		// memory is the floor, nowhere to go
		return nil
	}
	f.logDemotion(from, cause)
	return f.active
}

func (f *FallbackStore) logDemotion(from Tier, cause error) {
	f.logger.Warn("storage tier demoted",
		zap.String("from", string(from)),
		zap.String("to", string(f.tier)),
		zap.Error(cause),
	)
}

// appendTask, setDone and removeTask dispatch on the store's
// capability: the remote variant proxies per-operation, document
// variants rewrite the whole sequence. The read-modify-write below is
// not atomic across concurrent requests; the second writer silently
// overwrites the first's addition. Known property of the
// full-document design.

func appendTask(ctx context.Context, st storage.TaskStore, task *core.Task) (*core.Task, error) {
	if p, ok := st.(storage.TaskProxy); ok {
		up, err := p.CreateTask(ctx, task.Title)
		if err != nil {
			return nil, err
		}
		if up != nil {
			return up, nil
		}
		return task.CloneTask(), nil
	}

	w, ok := st.(storage.DocumentWriter)
	if !ok {
		return nil, core.NewBackendUnavailableError(
			"store can neither proxy nor write", nil,
			"service.appendTask",
		)
	}
	tasks, err := st.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	tasks = append(tasks, task.CloneTask())
	if err := w.WriteAll(ctx, tasks); err != nil {
		return nil, err
	}
	return task.CloneTask(), nil
}

func setDone(ctx context.Context, st storage.TaskStore, id string, done bool) error {
	if p, ok := st.(storage.TaskProxy); ok {
		return p.SetTaskDone(ctx, id, done)
	}

	w, ok := st.(storage.DocumentWriter)
	if !ok {
		return core.NewBackendUnavailableError(
			"store can neither proxy nor write", nil,
			"service.setDone",
		)
	}
	tasks, err := st.ReadAll(ctx)
	if err != nil {
		return err
	}
	i := core.IndexByID(tasks, id)
	if i < 0 {
		return nil
	}
	if tasks[i].IsDone == done {
		// already in the desired state, skip the document put
		return nil
	}
	tasks[i].IsDone = done
	return w.WriteAll(ctx, tasks)
}

func removeTask(ctx context.Context, st storage.TaskStore, id string) error {
	if p, ok := st.(storage.TaskProxy); ok {
		return p.RemoveTask(ctx, id)
	}

	w, ok := st.(storage.DocumentWriter)
	if !ok {
		return core.NewBackendUnavailableError(
			"store can neither proxy nor write", nil,
			"service.removeTask",
		)
	}
	tasks, err := st.ReadAll(ctx)
	if err != nil {
		return err
	}
	i := core.IndexByID(tasks, id)
	if i < 0 {
		return nil
	}
	tasks = append(tasks[:i], tasks[i+1:]...)
	return w.WriteAll(ctx, tasks)
}
