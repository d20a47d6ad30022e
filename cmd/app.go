package cmd

import (
	"fmt"

	"github.com/sudankdk/cee/internal/docker"
	"github.com/sudankdk/cee/internal/executer"
	"github.com/sudankdk/cee/internal/languages"
	"github.com/sudankdk/cee/internal/service"
	"github.com/sudankdk/cee/internal/store/sqlite"
)

// app is the wired object graph shared by the commands.
type app struct {
	api      docker.API
	registry *languages.Registry
	manager  *docker.Manager
	store    *sqlite.SQLiteStore
	svc      *service.CodeExecutionService
}

func newApp() (*app, error) {
	cli, err := docker.Shared(cfg.Docker.Host)
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	st, err := sqlite.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	registry := languages.NewRegistry(cli)
	manager := docker.NewManager(cli, docker.Config{
		Timeout:        cfg.Sandbox.Timeout,
		WorkDir:        cfg.Sandbox.WorkDir,
		CleanupTimeout: cfg.Sandbox.CleanupTimeout,
		MaxOutput:      cfg.Sandbox.MaxOutput,
	})
	exec := executer.NewExecutor(executer.NewFactory(registry), manager)

	return &app{
		api:      cli,
		registry: registry,
		manager:  manager,
		store:    st,
		svc:      service.NewCodeExecutionService(st, exec),
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	a.api.Close()
}
