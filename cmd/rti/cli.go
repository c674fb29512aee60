package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"rti.metlink.nz/internal/app"
	"rti.metlink.nz/internal/appconf"
	"rti.metlink.nz/internal/gtfs"
	"rti.metlink.nz/internal/logging"
	"rti.metlink.nz/internal/restapi"
)

const shutdownTimeout = 10 * time.Second

func newApp() *cli.App {
	return &cli.App{
		Name:  "rti",
		Usage: "Real-time departure board backed by the Metlink static and live feeds",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"RTI_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "gtfs-url",
				Usage: "static archive URL or local path, used without a config file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "load the schedule, follow the live feeds and serve the JSON API",
				Flags:  []cli.Flag{&cli.IntFlag{Name: "port", Usage: "listen port, overrides the config file"}},
				Action: serve,
			},
			{
				Name:  "check",
				Usage: "load the schedule once and print what it contains",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "live", Usage: "also fetch the live feeds once"},
				},
				Action: check,
			},
		},
	}
}

// loadConfig reads the config file when one is given, otherwise builds the
// configuration from flags and the environment.
func loadConfig(c *cli.Context) (appconf.Config, error) {
	var (
		cfg appconf.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = appconf.Load(path)
	} else {
		cfg, err = appconf.Finalize(appconf.Config{
			Static: appconf.StaticConfig{URL: c.String("gtfs-url")},
		}, os.Getenv)
	}
	if err != nil {
		return appconf.Config{}, err
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}
	return cfg, nil
}

func newLogger(cfg appconf.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if cfg.Log.Verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewLogger(os.Stdout, level, cfg.Log.Format)
	if err != nil {
		logging.LogError(logger, "unknown log level, using info", err)
	}
	return logger
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	manager, err := gtfs.InitManager(app.GtfsConfigFrom(cfg), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize GTFS manager: %w", err)
	}
	defer manager.Shutdown()
	if err := manager.Start(); err != nil {
		return err
	}

	api := restapi.NewRestAPI(app.New(cfg, manager, logger))
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()
	logger.Info("starting server", slog.String("addr", srv.Addr), slog.String("env", cfg.Env.String()))

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logging.LogOperation(logger, "shutting_down_server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func check(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	manager, err := gtfs.InitManager(app.GtfsConfigFrom(cfg), logger)
	if err != nil {
		return err
	}
	defer manager.Shutdown()

	if c.Bool("live") {
		ctx, cancel := context.WithTimeout(c.Context, app.GtfsConfigFrom(cfg).RealtimeTimeout+time.Second)
		defer cancel()
		manager.RefreshLive(ctx)
	}
	manager.PrintStatistics(c.App.Writer)
	return nil
}
