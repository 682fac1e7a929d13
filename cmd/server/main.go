// @title        taskdesk API
// @version      1.0
// @description  Web front-end service for the task-management backend.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/moneykrishna/taskdesk/internal/api"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
	"github.com/moneykrishna/taskdesk/internal/core/service"
	"github.com/moneykrishna/taskdesk/internal/infrastructure/backend"
	"github.com/moneykrishna/taskdesk/internal/infrastructure/config"
	"github.com/moneykrishna/taskdesk/internal/infrastructure/db/memory"
	mongostore "github.com/moneykrishna/taskdesk/internal/infrastructure/db/mongo"
	redisstore "github.com/moneykrishna/taskdesk/internal/infrastructure/db/redis"
	ophttp "github.com/moneykrishna/taskdesk/internal/infrastructure/http"
	"github.com/moneykrishna/taskdesk/internal/infrastructure/http/handlers"
	"github.com/moneykrishna/taskdesk/internal/infrastructure/queue"
	"github.com/moneykrishna/taskdesk/pkg/logger"
)

const appName = "taskdesk"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n%s", r, debug.Stack())
			returnError = errors.New("panic recovered")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	displayAppname(appName)

	storage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	client := backend.New(backend.Options{
		BaseURL:       cfg.Backend.URL,
		Timeout:       cfg.Backend.Timeout,
		UploadTimeout: cfg.Backend.UploadTimeout,
	}, logger.For("backend"))

	sessions := service.NewSessionStore(client, storage, logger.For("sessions"))
	tasks := service.NewTaskCache(sessions, client, storage, logger.For("task_cache"))
	sessions.OnClear(tasks)

	dispatcher := queue.NewDispatcher(cfg.Sync.Workers, cfg.Sync.Timeout, tasks, logger.For("sync"))
	dispatcher.Start(ctx)

	e := api.NewRouter(api.Deps{
		Sessions:     sessions,
		Tasks:        tasks,
		Syncer:       dispatcher,
		Backend:      client,
		Dashboards:   service.NewDashboards(client, storage, logger.For("dashboards")),
		CookieSecure: cfg.CookieSecure,
		Log:          logger.For("http"),
	})
	ophttp.RegisterOps(e,
		handlers.Dependency{Name: "storage", Pinger: storage},
		handlers.Dependency{Name: "backend", Pinger: client},
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(server, log) }()

	log.Info().
		Str("port", cfg.Port).
		Str("env", cfg.Env).
		Str("storage", cfg.Storage.Driver).
		Str("backend", cfg.Backend.URL).
		Int("sync_workers", cfg.Sync.Workers).
		Msg("server started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	return shutdown(server)
}

type clientStorage interface {
	ports.ClientStorage
	io.Closer
}

func openStorage(ctx context.Context, cfg *config.Config) (clientStorage, error) {
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		return redisstore.Open(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB, TTL: cfg.Storage.TTL})
	case config.StorageMongo:
		return mongostore.Open(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, TTL: cfg.Storage.TTL})
	default:
		return memory.NewClientStorage(), nil
	}
}

func listenAndServe(server *http.Server, log zerolog.Logger) error {
	log.Info().Str("addr", server.Addr).Msg("listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe: %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
