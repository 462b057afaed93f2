package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run(in io.Reader, out io.Writer) error
	Service() CatalogServiceProvider
	Clean()
}

type App struct {
	logger   *zap.Logger
	config   *Config
	service  *CatalogService
	cleanups []func()
}

// NewApp loads the configuration from the given sources and provides an instance of App.
func NewApp(configFile, envFile string) (*App, error) {
	config, err := LoadAndInitConfigs(configFile, envFile, GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}
	return BuildApp(config, os.Stdout)
}

// BuildApp sets up logging, the record store and the catalog service
// from an already initialized config. Console logs go to console.
func BuildApp(config *Config, console io.Writer) (*App, error) {
	logFile, err := OpenLogFile(config.LogFile)
	if err != nil {
		return nil, err
	}
	closer := func() {
		if cerr := logFile.Close(); cerr != nil {
			fmt.Println("error during closing of log file: ", cerr)
		}
	}
	logger, flusher := SetupLogging(config, logFile, console)

	store, err := NewRecordStore(logger, config)
	if err != nil {
		_ = flusher()
		closer()
		return nil, err
	}
	storeCloser := func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close record store", zap.Error(cerr))
		}
	}

	logger.Info("catalog ready",
		zap.String("app.backend", config.Storage.Backend),
		zap.Bool("app.container", IsAppRunningInDocker()),
		zap.String("app.built", config.BuildTime),
	)

	return &App{
		logger:  logger,
		config:  config,
		service: NewCatalogService(logger, NewClock(config.IsProduction), NewIDsHandler(), store),
		cleanups: []func(){
			storeCloser,
			func() {
				if ferr := flusher(); ferr != nil {
					fmt.Println(ferr)
				}
			},
			closer,
		},
	}, nil
}

// Service gives direct access to the catalog operations.
func (app *App) Service() CatalogServiceProvider {
	return app.service
}

// Run starts the interactive shell and a goroutine which is responsible to stop it.
func (app *App) Run(in io.Reader, out io.Writer) error {
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)
	sCtx, cancel := context.WithCancel(gCtx)
	defer cancel()

	g.Go(app.Serve(sCtx, cancel, in, out))
	g.Go(app.Stop(nCtx, sCtx))

	err := g.Wait()
	app.logger.Info("shell stopped", zap.Error(err))
	return err
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		f()
	}
}

// Serve runs the shell. Its returned error will be caught by the errorgroup.
func (app *App) Serve(ctx context.Context, done context.CancelFunc, in io.Reader, out io.Writer) func() error {
	return func() error {
		defer done()
		app.logger.Info("shell starting", zap.String("app.backend", app.config.Storage.Backend))
		return NewShell(app.logger, app.service, in, out).Run(ctx)
	}
}

// Stop waits for the shell context and states the reason of the stop.
// It explicitly returns `nil` to allow the errorgroup catches only the
// `Serve` method result.
func (app *App) Stop(nCtx, sCtx context.Context) func() error {
	return func() error {
		<-sCtx.Done()
		if nCtx.Err() != nil {
			app.logger.Info("shell stopping. reason: requested to stop")
		} else {
			app.logger.Info("shell stopping. reason: session ended")
		}
		return nil
	}
}
