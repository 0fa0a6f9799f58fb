package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okatkov/taskpad/internal/core"
)

func TestRemoteTaskStore_ReadAll(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/tasks", r.URL.Path)
		_ = json.NewEncoder(w).Encode(remoteTaskListBody{
			TaskList: []*core.Task{
				{ID: "up-1", Title: "walk the dog"},
				{ID: "up-2", Title: "drink coffee", IsDone: true},
			},
		})
	}))
	defer upstream.Close()

	store, err := NewRemoteTaskStore(upstream.URL, upstream.Client())
	require.NoError(t, err)
	defer store.Close()

	tasks, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, "up-1", tasks[0].ID)
	require.True(t, tasks[1].IsDone)
}

func TestRemoteTaskStore_CreateReturnsUpstreamBody(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/tasks", r.URL.Path)

		var req struct {
			Title string `json:"title"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "wash dishes", req.Title)

		// upstream assigns its own id
		_ = json.NewEncoder(w).Encode(remoteTaskBody{
			Task: &core.Task{ID: "server-side-id", Title: req.Title},
		})
	}))
	defer upstream.Close()

	store, err := NewRemoteTaskStore(upstream.URL, upstream.Client())
	require.NoError(t, err)

	task, err := store.CreateTask(context.Background(), "wash dishes")
	require.NoError(t, err)
	require.NotNil(t, task)
	require.Equal(t, "server-side-id", task.ID)
	require.False(t, task.IsDone)
}

func TestRemoteTaskStore_SetDoneAndRemove(t *testing.T) {
	t.Parallel()

	var gotPatch, gotDelete string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			gotPatch = r.URL.Path
			var req struct {
				IsDone bool `json:"isDone"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.True(t, req.IsDone)
			_ = json.NewEncoder(w).Encode(map[string]string{"msg": "task updated"})
		case http.MethodDelete:
			gotDelete = r.URL.Path
			_ = json.NewEncoder(w).Encode(map[string]string{"msg": "task removed"})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer upstream.Close()

	store, err := NewRemoteTaskStore(upstream.URL, upstream.Client())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.SetTaskDone(ctx, "simon-1", true))
	require.Equal(t, "/tasks/simon-1", gotPatch)
	require.NoError(t, store.RemoveTask(ctx, "simon-1"))
	require.Equal(t, "/tasks/simon-1", gotDelete)
}

func TestRemoteTaskStore_UpstreamFailureIsUnavailable(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	store, err := NewRemoteTaskStore(upstream.URL, upstream.Client())
	require.NoError(t, err)

	_, err = store.ReadAll(context.Background())
	require.Error(t, err)
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, core.ErrorCodeUnavailable, appErr.Code)
}
