package core

// Task is a single tracked item. ID is opaque and never reused,
// Title is fixed at creation, only IsDone changes afterwards.
type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	IsDone bool   `json:"isDone"`
}

func NewTask(id, title string) *Task {
	return &Task{
		ID:    id,
		Title: title,
	}
}

func (t *Task) CloneTask() *Task {
	if t == nil {
		return nil
	}
	ct := *t
	return &ct
}

func CloneTasks(tasks []*Task) []*Task {
	if len(tasks) == 0 {
		return nil
	}

	res := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, t.CloneTask())
	}
	return res
}

// IndexByID returns the position of id in tasks, or -1.
// Insertion order is the only order a task list has.
func IndexByID(tasks []*Task, id string) int {
	for i, t := range tasks {
		if t != nil && t.ID == id {
			return i
		}
	}
	return -1
}
