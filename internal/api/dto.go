package api

import "github.com/okatkov/taskpad/internal/core"

type CreateTaskRequest struct {
	Title string `json:"title"`
}

// UpdateTaskRequest binds isDone through a required pointer: an absent
// field or a non-boolean value is a binding error, not a silent false.
type UpdateTaskRequest struct {
	IsDone *bool `json:"isDone" binding:"required"`
}

type TaskResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	IsDone bool   `json:"isDone"`
}

type TaskListResponse struct {
	TaskList []*TaskResponse `json:"taskList"`
}

type CreatedTaskResponse struct {
	Task *TaskResponse `json:"task"`
}

type MessageResponse struct {
	Msg string `json:"msg"`
}

func NewTaskResponse(task *core.Task) *TaskResponse {
	if task == nil {
		return nil
	}
	return &TaskResponse{
		ID:     task.ID,
		Title:  task.Title,
		IsDone: task.IsDone,
	}
}

func NewTaskListResponse(tasks []*core.Task) *TaskListResponse {
	resp := &TaskListResponse{
		TaskList: make([]*TaskResponse, 0, len(tasks)),
	}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		resp.TaskList = append(resp.TaskList, NewTaskResponse(t))
	}
	return resp
}
