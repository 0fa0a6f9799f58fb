package docfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okatkov/taskpad/internal/core"
)

// The on-disk layout is a bare JSON array of tasks, no envelope and no
// schema version field. It matches the value the bolt variant keeps
// under its single key, so a document is portable between the two.

// Write persists the task list to the path, replacing whatever was
// there. Goes through a tmp file + rename so readers never observe a
// half-written document.
func Write(ctx context.Context, path string, tasks []*core.Task) error {
	if path == "" {
		return errors.New("docfile: required path")
	} else if err := ctx.Err(); err != nil {
		return err
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("docfile: create dir: %w", err)
	}
	if tasks == nil {
		tasks = []*core.Task{}
	}
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(
		tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC,
		0o644,
	)
	if err != nil {
		return fmt.Errorf("docfile: open tmp: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tasks); err != nil {
		closeErr := f.Close()
		if closeErr != nil {
			return fmt.Errorf("docfile: encode: %v: close:%w", err, closeErr)
		}
		return fmt.Errorf("docfile: encode: %w", err)
	} else if err := f.Sync(); err != nil {
		closeErr := f.Close()
		if closeErr != nil {
			return fmt.Errorf("docfile: fsync: %v: close:%w", err, closeErr)
		}
		return fmt.Errorf("docfile: fsync: %w", err)
	} else if err := f.Close(); err != nil {
		return fmt.Errorf("docfile: close: %w", err)
	} else if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("docfile: rename tmp: %w", err)
	} else {
		return nil
	}
}

// Read loads the task list from disk. A missing file is not an error:
// it reads as (nil, nil), meaning the store has never been written.
func Read(ctx context.Context, path string) ([]*core.Task, error) {
	if path == "" {
		return nil, errors.New("docfile: required path")
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("docfile: open: %w", err)
	}
	defer f.Close()

	var tasks []*core.Task
	dec := json.NewDecoder(f)
	if err := dec.Decode(&tasks); err != nil {
		return nil, fmt.Errorf("docfile: decode: %w", err)
	}
	return tasks, nil
}
