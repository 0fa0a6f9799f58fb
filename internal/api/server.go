package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var ErrNoTaskService = errors.New("task service is required")

type Server struct {
	router *gin.Engine

	httpSrv *http.Server
}

type ServerOptions struct {
	TaskService taskService
	Logger      *zap.Logger
	Addr        string
}

func NewServer(opts *ServerOptions) (*Server, error) {
	if opts.TaskService == nil {
		return nil, ErrNoTaskService
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(
		RecoveryMiddleware(opts.Logger),
		RequestIDMiddleware(),
		LoggingMiddleware(opts.Logger),
	)

	h := NewHandler(opts.TaskService, opts.Logger)
	setupRouter(router, h)

	return &Server{
		router: router,
		httpSrv: &http.Server{
			Addr:    opts.Addr,
			Handler: router,
		}}, nil
}

func (s *Server) Run() error {
	return s.httpSrv.ListenAndServe()
}
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) Router() http.Handler {
	return s.router
}

func setupRouter(router *gin.Engine, h *handler) {
	group := router.Group("/")
	group.GET("/tasks", h.listTasks)
	group.POST("/tasks", h.createTask)
	group.PATCH("/tasks/:id", h.updateTask)
	group.DELETE("/tasks/:id", h.removeTask)

	// anything outside the four task routes answers 405, path and
	// method alike
	router.HandleMethodNotAllowed = true
	router.NoMethod(methodNotAllowed)
	router.NoRoute(methodNotAllowed)
}

func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, MessageResponse{Msg: "method not allowed"})
}
