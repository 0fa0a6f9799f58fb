package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/okatkov/taskpad/internal/core"
)

type taskService interface {
	ListTasks(ctx context.Context) ([]*core.Task, error)
	CreateTask(ctx context.Context, title string) (*core.Task, error)
	SetTaskDone(ctx context.Context, id string, done bool) error
	RemoveTask(ctx context.Context, id string) error
}

type handler struct {
	tasks  taskService
	logger *zap.Logger
}

const handlerTimeout = 30 * time.Second

func NewHandler(ts taskService, logger *zap.Logger) *handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &handler{tasks: ts, logger: logger}
}

func (h *handler) listTasks(c *gin.Context) {
	ctx, canc := context.WithTimeout(c.Request.Context(), handlerTimeout)
	defer canc()

	tasks, err := h.tasks.ListTasks(ctx)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, NewTaskListResponse(tasks))
}

func (h *handler) createTask(c *gin.Context) {
	req := CreateTaskRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequestResponse(c, err)
		return
	}

	ctx, canc := context.WithTimeout(c.Request.Context(), handlerTimeout)
	defer canc()

	t, err := h.tasks.CreateTask(ctx, req.Title)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	SetTaskID(c, t.ID)
	h.logger.Info("created task",
		zap.String("reqid", GetRequestID(c)),
		zap.String("task_id", t.ID),
	)
	c.JSON(http.StatusOK, CreatedTaskResponse{Task: NewTaskResponse(t)})
}

func (h *handler) updateTask(c *gin.Context) {
	id := c.Param("id")
	SetTaskID(c, id)

	req := UpdateTaskRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequestResponse(c, err)
		return
	}

	ctx, canc := context.WithTimeout(c.Request.Context(), handlerTimeout)
	defer canc()

	if err := h.tasks.SetTaskDone(ctx, id, *req.IsDone); err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Msg: "task updated"})
}

func (h *handler) removeTask(c *gin.Context) {
	id := c.Param("id")
	SetTaskID(c, id)

	ctx, canc := context.WithTimeout(c.Request.Context(), handlerTimeout)
	defer canc()

	if err := h.tasks.RemoveTask(ctx, id); err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Msg: "task removed"})
}

func (h *handler) badRequestResponse(c *gin.Context, err error) {
	if c != nil && err != nil {
		c.Error(err) //nolint:errcheck
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "bad request",
		"details": err.Error(),
	})
}

func (h *handler) errorResponse(c *gin.Context, err error) {
	if c != nil && err != nil {
		c.Error(err) //nolint:errcheck
	}
	if err == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
		})
		return
	}

	if appErr, ok := core.AsAppError(err); ok {
		s := appErr.HTTPStatus()
		p := gin.H{
			"error": appErr.PublicMessage(),
			"code":  appErr.Code,
		}
		if appErr.SafeToShow {
			switch {
			case appErr.Err != nil:
				p["details"] = appErr.Err.Error()
			case appErr.Message != "":
				p["details"] = appErr.Message
			}
		}
		h.logger.Warn("handler error",
			zap.String("reqid", GetRequestID(c)),
			zap.String("task_id", GetTaskID(c)),
			zap.String("error", err.Error()),
		)
		c.AbortWithStatusJSON(s, p)
		return
	}

	h.logger.Error("handler unknown error",
		zap.String("reqid", GetRequestID(c)),
		zap.String("task_id", GetTaskID(c)),
		zap.String("error", err.Error()),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": "internal server error",
	})
}
