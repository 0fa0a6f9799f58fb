package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTaskDefaults(t *testing.T) {
	t.Parallel()

	task := NewTask("simon-1", "feed the cat")
	require.Equal(t, "simon-1", task.ID)
	require.Equal(t, "feed the cat", task.Title)
	require.False(t, task.IsDone)
}

func TestCloneTaskIndependence(t *testing.T) {
	t.Parallel()

	task := NewTask("simon-1", "feed the cat")
	clone := task.CloneTask()
	clone.IsDone = true
	clone.Title = "mutated"

	require.False(t, task.IsDone)
	require.Equal(t, "feed the cat", task.Title)

	var nilTask *Task
	require.Nil(t, nilTask.CloneTask())
}

func TestCloneTasks(t *testing.T) {
	t.Parallel()

	require.Nil(t, CloneTasks(nil))

	tasks := []*Task{
		NewTask("a", "one"),
		NewTask("b", "two"),
	}
	clones := CloneTasks(tasks)
	require.Len(t, clones, 2)
	clones[0].IsDone = true
	require.False(t, tasks[0].IsDone)
}

func TestIndexByID(t *testing.T) {
	t.Parallel()

	tasks := []*Task{
		NewTask("a", "one"),
		nil,
		NewTask("c", "three"),
	}
	require.Equal(t, 0, IndexByID(tasks, "a"))
	require.Equal(t, 2, IndexByID(tasks, "c"))
	require.Equal(t, -1, IndexByID(tasks, "missing"))
	require.Equal(t, -1, IndexByID(nil, "a"))
}
