package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kozaktomas/photo-culler/internal/ai"
	"github.com/kozaktomas/photo-culler/internal/analyzer"
	"github.com/kozaktomas/photo-culler/internal/config"
	"github.com/kozaktomas/photo-culler/internal/database"
	"github.com/kozaktomas/photo-culler/internal/database/sqlstore"
	"github.com/kozaktomas/photo-culler/internal/library"
	"github.com/kozaktomas/photo-culler/internal/logger"
)

// app bundles what every command needs: configuration, logging, the store
// and the on-disk library layout.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	store  *sqlstore.Store
	layout *library.Layout
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := sqlstore.Open(ctx, &cfg.Database)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &app{
		cfg:    cfg,
		log:    log,
		store:  store,
		layout: library.New(cfg.Library.Root),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close database", "error", err)
	}
	a.log.Sync()
}

func (a *app) analyzer(provider ai.Provider) *analyzer.Analyzer {
	return analyzer.New(a.store, provider, a.layout, a.log)
}

// project loads a project or fails with a readable message.
func (a *app) project(ctx context.Context, id string) (*database.Project, error) {
	project, err := a.store.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", id, database.ErrProjectNotFound)
	}
	return project, nil
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Println("\nReceived interrupt signal...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
