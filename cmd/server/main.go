package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/okatkov/taskpad/internal/api"
	"github.com/okatkov/taskpad/internal/config"
	"github.com/okatkov/taskpad/internal/core"
	"github.com/okatkov/taskpad/internal/service"
	"github.com/okatkov/taskpad/internal/storage"
)

const (
	configAppName = "app"
	configExt     = "env"
	configDir     = "config"

	taskIDPrefix = "task-"
)

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout", "app_log.log"}
	cfg.ErrorOutputPaths = []string{"stderr", "app_log.log"}
	return cfg.Build()
}

func main() {
	zapLogger, err := newLogger()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "can init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	logger := zapLogger.Named("server")

	logger.Info("running server", zap.Int("pid", os.Getpid()))

	cfg, err := readConfig()
	if err != nil || cfg == nil {
		logger.Fatal("cant read config, check file", zap.Error(err), zap.String("name", configAppName))
	}
	gin.SetMode(cfg.GinMode)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatal("cant create data dir", zap.Error(err), zap.String("dir", cfg.DataDir))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// SIGHUP rebuilds the component. That matters here: a demoted
	// fallback store never climbs back on its own, reloading is the
	// sanctioned way to re-attempt a healed durable tier.
	restartCh := make(chan os.Signal, 1)
	signal.Notify(restartCh, syscall.SIGHUP)
	defer signal.Stop(restartCh)

	h := &holder{}
	compLogger := logger.Named("comp")
	c, err := newAppComponent(cfg, compLogger)
	if err != nil {
		logger.Fatal("cant create app component", zap.Error(err))
	}
	h.set(c)

	srv, err := api.NewServer(&api.ServerOptions{
		TaskService: &taskServiceProxy{holder: h},
		Logger:      logger,

		Addr: cfg.ServerAddr,
	})
	if err != nil {
		logger.Fatal("cant create api server", zap.Error(err))
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.ServerAddr))
		if err := srv.Run(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				return
			}
			errCh <- err
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown signal received")
			goto shutdown
		case <-restartCh:
			if err := restartComponent(h, cfg, compLogger); err != nil {
				logger.Error("restart failed", zap.Error(err))
			}
		case err := <-errCh:
			logger.Error("server failed", zap.Error(err))
		}
	}

shutdown:
	offCtx, offCanc := context.WithTimeout(context.Background(), 30*time.Second)
	defer offCanc()
	if err := srv.Shutdown(offCtx); err != nil {
		logger.Error("cant shutdown server", zap.Error(err))
	}
	if comp := h.take(); comp != nil {
		comp.closeStore(compLogger)
	}
	logger.Info("shutdown done")
}

type appComponent struct {
	svc   *service.TaskService
	store *service.FallbackStore
}

func newAppComponent(cfg *config.AppConfig, logger *zap.Logger) (*appComponent, error) {
	svc, store, err := setup(cfg, logger)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	return &appComponent{
		svc:   svc,
		store: store,
	}, nil
}

func (c *appComponent) closeStore(logger *zap.Logger) {
	if c.store == nil {
		return
	}
	if err := c.store.Close(); err != nil {
		logger.Error("cant close store", zap.Error(err))
	}
	c.store = nil
}

type holder struct {
	mu   sync.RWMutex
	comp *appComponent
}

func (h *holder) set(c *appComponent) {
	h.mu.Lock()
	h.comp = c
	h.mu.Unlock()
}
func (h *holder) take() *appComponent {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.comp
	h.comp = nil
	return c
}
func (h *holder) withService(f func(*service.TaskService) error) error {
	h.mu.RLock()
	c := h.comp
	if c == nil {
		h.mu.RUnlock()
		return errors.New("service not available")
	}
	defer h.mu.RUnlock()
	return f(c.svc)
}

type taskServiceProxy struct {
	holder *holder
}

func (p *taskServiceProxy) ListTasks(ctx context.Context) ([]*core.Task, error) {
	res := []*core.Task{}
	err := p.holder.withService(func(ts *service.TaskService) error {
		var thisErr error
		res, thisErr = ts.ListTasks(ctx)
		return thisErr
	})
	return res, err
}
func (p *taskServiceProxy) CreateTask(ctx context.Context, title string) (*core.Task, error) {
	res := &core.Task{}
	err := p.holder.withService(func(ts *service.TaskService) error {
		var thisErr error
		res, thisErr = ts.CreateTask(ctx, title)
		return thisErr
	})
	return res, err
}
func (p *taskServiceProxy) SetTaskDone(ctx context.Context, id string, done bool) error {
	return p.holder.withService(func(ts *service.TaskService) error {
		return ts.SetTaskDone(ctx, id, done)
	})
}
func (p *taskServiceProxy) RemoveTask(ctx context.Context, id string) error {
	return p.holder.withService(func(ts *service.TaskService) error {
		return ts.RemoveTask(ctx, id)
	})
}

func readConfig() (*config.AppConfig, error) {
	return config.LoadAppConfig(configAppName, configExt, configDir)
}

func setup(cfg *config.AppConfig, logger *zap.Logger) (*service.TaskService, *service.FallbackStore, error) {
	idGen := service.NewRandomIDGenerator(taskIDPrefix)

	seed, err := service.SeedTasks(idGen)
	if err != nil {
		return nil, nil, err
	}

	opts := &service.FallbackOptions{
		Seed:   seed,
		Logger: logger,
	}

	switch strings.ToLower(cfg.StorageMode) {
	case "bolt":
		path := filepath.Join(cfg.DataDir, "tasks.db")
		opts.OpenDurable = func(ctx context.Context) (storage.TaskStore, error) {
			return storage.NewBoltTaskStore(path)
		}
	case "file":
		path := filepath.Join(cfg.DataDir, "tasks.json")
		opts.OpenDurable = func(ctx context.Context) (storage.TaskStore, error) {
			return storage.NewFileTaskStore(path)
		}
	case "memory":
		// durable tier skipped, remote or memory serve directly
	default:
		return nil, nil, errors.New("unknown storage mode")
	}

	if cfg.RemoteAPIURL != "" {
		baseURL := cfg.RemoteAPIURL
		client := &http.Client{Timeout: cfg.RemoteTimeout}
		opts.OpenRemote = func(ctx context.Context) (storage.TaskStore, error) {
			return storage.NewRemoteTaskStore(baseURL, client)
		}
	}

	store := service.NewFallbackStore(opts)

	svc, err := service.NewTaskService(store, idGen)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return svc, store, nil
}

func restartComponent(h *holder, cfg *config.AppConfig, logger *zap.Logger) error {
	logger.Info("restart required")

	h.mu.Lock()
	defer h.mu.Unlock()

	last := h.comp
	if last == nil {
		return errors.New("component not init")
	}
	last.closeStore(logger)

	newer, err := newAppComponent(cfg, logger)
	if err != nil {
		return err
	}
	h.comp = newer
	logger.Info("restart done")
	return nil
}
