package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/okatkov/taskpad/internal/core"
)

// RemoteTaskStore forwards CRUD to an upstream service implementing the
// same HTTP contract this server exposes. Any transport error or non-2xx
// answer comes back as Unavailable so the fallback controller demotes.
type RemoteTaskStore struct {
	baseURL string
	client  *http.Client
}

type remoteTaskListBody struct {
	TaskList []*core.Task `json:"taskList"`
}

type remoteTaskBody struct {
	Task *core.Task `json:"task"`
}

func NewRemoteTaskStore(baseURL string, client *http.Client) (*RemoteTaskStore, error) {
	if baseURL == "" {
		return nil, errors.New("storage: required remote base url")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("storage: bad remote base url: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteTaskStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}, nil
}

func (s *RemoteTaskStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *RemoteTaskStore) ReadAll(ctx context.Context) ([]*core.Task, error) {
	const op = "storage.RemoteTaskStore.ReadAll"

	body := remoteTaskListBody{}
	if err := s.roundTrip(ctx, http.MethodGet, "/tasks", nil, &body); err != nil {
		return nil, core.NewBackendUnavailableError("remote read", err, op)
	}
	return body.TaskList, nil
}

// CreateTask posts the title upstream. When the upstream answers with a
// server-assigned task body, that record is returned verbatim.
func (s *RemoteTaskStore) CreateTask(ctx context.Context, title string) (*core.Task, error) {
	const op = "storage.RemoteTaskStore.CreateTask"

	req := struct {
		Title string `json:"title"`
	}{Title: title}

	body := remoteTaskBody{}
	if err := s.roundTrip(ctx, http.MethodPost, "/tasks", req, &body); err != nil {
		return nil, core.NewBackendUnavailableError("remote create", err, op)
	}
	return body.Task, nil
}

func (s *RemoteTaskStore) SetTaskDone(ctx context.Context, id string, done bool) error {
	const op = "storage.RemoteTaskStore.SetTaskDone"

	req := struct {
		IsDone bool `json:"isDone"`
	}{IsDone: done}

	if err := s.roundTrip(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), req, nil); err != nil {
		return core.NewBackendUnavailableError("remote update", err, op)
	}
	return nil
}

func (s *RemoteTaskStore) RemoveTask(ctx context.Context, id string) error {
	const op = "storage.RemoteTaskStore.RemoveTask"

	if err := s.roundTrip(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil); err != nil {
		return core.NewBackendUnavailableError("remote remove", err, op)
	}
	return nil
}

func (s *RemoteTaskStore) roundTrip(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		p, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("storage: cant marshal request: %w", err)
		}
		reqBody = bytes.NewReader(p)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("storage: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage: remote call: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("storage: remote answered %d for %s %s",
			resp.StatusCode, method, path,
		)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("storage: decode remote response: %w", err)
	}
	return nil
}
