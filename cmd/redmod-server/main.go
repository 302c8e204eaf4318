package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/redmod-go/internal/core/clock"
	"github.com/yndnr/redmod-go/internal/core/command"
	"github.com/yndnr/redmod-go/internal/core/pubsub"
	"github.com/yndnr/redmod-go/internal/infra/buildinfo"
	"github.com/yndnr/redmod-go/internal/infra/confloader"
	"github.com/yndnr/redmod-go/internal/infra/shutdown"
	"github.com/yndnr/redmod-go/internal/server/config"
	"github.com/yndnr/redmod-go/internal/server/httpserver"
	"github.com/yndnr/redmod-go/internal/server/redisserver"
	"github.com/yndnr/redmod-go/internal/telemetry/logger"
	"github.com/yndnr/redmod-go/internal/telemetry/metric"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:    "redmod-server",
		Usage:   "RESP-compatible in-memory key-value server",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"REDMOD_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "bind-ip",
				Aliases: []string{"bind"},
				Usage:   "IP address to listen on",
				EnvVars: []string{"REDMOD_BIND_IP"},
			},
			&cli.IntFlag{
				Name:    "bind-port",
				Aliases: []string{"port"},
				Usage:   "TCP port to listen on",
				EnvVars: []string{"REDMOD_BIND_PORT"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Serve Prometheus metrics and health checks",
			},
		},
		Action: serve,
	}
}

// flagOverrides returns the flags given on the command line as config keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	if c.IsSet("bind-ip") {
		overrides["server.bind"] = c.String("bind-ip")
	}
	if c.IsSet("bind-port") {
		overrides["server.port"] = c.Int("bind-port")
	}
	if c.IsSet("log-level") {
		overrides["log.level"] = c.String("log-level")
	}
	if c.IsSet("metrics") {
		overrides["metrics.enabled"] = c.Bool("metrics")
	}
	return overrides
}

func serve(c *cli.Context) error {
	loader := config.NewLoader(c.String("config"), flagOverrides(c))
	cfg, err := config.Load(loader)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	slogger := log.Slog()

	printBanner(c.App.Writer, cfg)
	slogger.Info("starting redmod-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", loader.FilePath())
	slogger.Debug("effective configuration", "config", config.Sanitize(cfg))

	registry := metric.NewRegistry()
	sched := clock.NewTimerScheduler(clock.System{})
	engine := command.New(clock.System{}, sched,
		command.WithObserver(registry),
		command.WithLogger(slogger.With("component", "engine")),
		command.WithOnExpire(registry.KeyExpired),
	)
	hub := pubsub.NewHub()

	rc, err := config.ToRedisConfig(cfg)
	if err != nil {
		return err
	}
	srv := redisserver.New(rc, engine, hub, slogger.With("component", "redis"),
		redisserver.WithMetrics(registry))
	registry.MustRegister(metric.NewCollector(engine.KeyCount, srv.ConnectedClients))

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	handler := shutdown.NewHandler(shutdownTimeout, slogger)
	handler.OnShutdown("scheduler", func(context.Context) error {
		sched.Stop()
		return nil
	})

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start redis server: %w", err)
	}
	handler.OnShutdown("redis", srv.Shutdown)

	if cfg.Metrics.Enabled {
		httpSrv, err := startMetrics(cfg, registry, srv, slogger)
		if err != nil {
			_ = handler.Shutdown()
			return err
		}
		handler.OnShutdown("http", httpSrv.Shutdown)
	}

	if path := loader.FilePath(); path != "" {
		watcher, err := watchConfig(path, loader, slogger)
		if err != nil {
			slogger.Warn("config hot reload disabled", "error", err)
		} else {
			handler.OnShutdown("watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	slogger.Info("server started, press Ctrl+C to stop")
	if err := handler.Wait(ctx); err != nil {
		return err
	}
	slogger.Info("server stopped gracefully")
	return nil
}

func startMetrics(cfg *config.ServerConfig, registry *metric.Registry, srv *redisserver.Server, log *slog.Logger) (*httpserver.Server, error) {
	router, err := httpserver.NewRouter(&httpserver.RouterConfig{
		Metrics:          registry.Handler(),
		MetricsAllowList: cfg.Metrics.AllowList,
		Logger:           log.With("component", "http"),
		Health: func() error {
			if srv.Addr() == nil {
				return errors.New("redis listener is not running")
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	httpSrv := httpserver.New(cfg.Metrics.Addr, router)

	go func() {
		log.Info("metrics server listening", "addr", cfg.Metrics.Addr)
		if err := httpSrv.ListenAndServe(); err != nil {
			log.Error("metrics server error", "error", err)
		}
	}()
	return httpSrv, nil
}

// watchConfig reloads the file on change and applies log.level.
// Other settings need a restart.
func watchConfig(path string, loader *confloader.Loader, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := config.Load(loader)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		prev := logger.GetLevel()
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if next := logger.GetLevel(); next != prev {
			log.Info("log level changed", "from", prev, "to", next)
		}
	})
	w.StartAsync()
	return w, nil
}

func printBanner(w io.Writer, cfg *config.ServerConfig) {
	title := color.New(color.FgRed, color.Bold)
	label := color.New(color.FgCyan)

	title.Fprintf(w, "redmod %s\n", buildinfo.Version)
	label.Fprint(w, "  listening  ")
	fmt.Fprintf(w, "%s:%d\n", cfg.Server.Bind, cfg.Server.Port)
	label.Fprint(w, "  pid        ")
	fmt.Fprintf(w, "%d\n", os.Getpid())
	if cfg.Metrics.Enabled {
		label.Fprint(w, "  metrics    ")
		fmt.Fprintf(w, "http://%s/metrics\n", cfg.Metrics.Addr)
	}
}
