package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/okatkov/taskpad/internal/core"
)

// BoltTaskStore keeps the whole task list as one JSON document under a
// single key. Every ReadAll is a full-document get, every WriteAll a
// full-document put.
type BoltTaskStore struct {
	db *bolt.DB
}

const (
	boltTasksBucket = "taskpad-tasks"
	boltTasksKey    = "tasks"
)

func NewBoltTaskStore(path string) (*BoltTaskStore, error) {
	if path == "" {
		return nil, errors.New("storage: required bolt path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create bolt dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600,
		&bolt.Options{Timeout: time.Second},
	)
	if err != nil {
		return nil, fmt.Errorf("storage: opening bolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, berr := tx.CreateBucketIfNotExists([]byte(boltTasksBucket))
		return berr
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: cant init bucket: %w", err)
	}

	return &BoltTaskStore{db: db}, nil
}

func (s *BoltTaskStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ReadAll returns the stored sequence. An absent document reads as
// empty, which is how the seeder tells a fresh store from a used one.
func (s *BoltTaskStore) ReadAll(ctx context.Context) ([]*core.Task, error) {
	const op = "storage.BoltTaskStore.ReadAll"
	if s.db == nil {
		return nil, core.NewBackendUnavailableError("bolt not init", nil, op)
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tasks []*core.Task
	if err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltTasksBucket))
		if bucket == nil {
			return errors.New("storage: bucket miss")
		}
		value := bucket.Get([]byte(boltTasksKey))
		if value == nil {
			return nil
		}
		if err := json.Unmarshal(value, &tasks); err != nil {
			return fmt.Errorf("storage: cant unmarshal tasks: %w", err)
		}
		return nil
	}); err != nil {
		return nil, core.NewBackendUnavailableError("bolt read", err, op)
	}
	return core.CloneTasks(tasks), nil
}

// WriteAll replaces the stored sequence with tasks.
func (s *BoltTaskStore) WriteAll(ctx context.Context, tasks []*core.Task) error {
	const op = "storage.BoltTaskStore.WriteAll"
	if s.db == nil {
		return core.NewBackendUnavailableError("bolt not init", nil, op)
	} else if err := ctx.Err(); err != nil {
		return err
	}

	if tasks == nil {
		tasks = []*core.Task{}
	}
	p, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("storage: cant marshal tasks: %w", err)
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltTasksBucket))
		if bucket == nil {
			return errors.New("storage: bucket miss")
		}
		return bucket.Put([]byte(boltTasksKey), p)
	}); err != nil {
		return core.NewBackendUnavailableError("bolt write", err, op)
	}
	return nil
}
