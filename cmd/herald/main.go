package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/clawinfra/herald/internal/api"
	"github.com/clawinfra/herald/internal/channels"
	"github.com/clawinfra/herald/internal/config"
	"github.com/clawinfra/herald/internal/decorate"
	"github.com/clawinfra/herald/internal/dispatch"
	"github.com/clawinfra/herald/internal/interfaces"
	"github.com/clawinfra/herald/internal/registry"
	"github.com/clawinfra/herald/internal/scheduler"
	"github.com/clawinfra/herald/internal/store"
	"github.com/clawinfra/herald/internal/subscribe"
	"github.com/clawinfra/herald/internal/types"
)

var (
	version   = "0.1.0"
	buildTime = "dev"
)

// App holds all the runtime components
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Registry    *registry.Registry
	Store       *store.Store
	Subscribers *subscribe.Registry
	Dispatcher  *dispatch.Dispatcher
	Facade      *dispatch.Facade
	Scheduler   *scheduler.Scheduler
	APIServer   *api.Server
	channels    []interfaces.Channel
	apiContext  context.Context
	apiCancel   context.CancelFunc
}

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("herald", flag.ExitOnError)
	configPath := fs.String("config", "herald.json", "Path to config file (.json or .toml)")
	showVersion := fs.Bool("version", false, "Show version")
	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Printf("Error parsing arguments: %v\n", err)
		return 1
	}

	if *showVersion {
		fmt.Printf("Herald v%s (built %s)\n", version, buildTime)
		fmt.Println("Notification delivery daemon")
		return 0
	}

	app, err := setup(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
		return 1
	}

	if err := startServices(app); err != nil {
		app.Logger.Error("failed to start services", "error", err)
		return 1
	}

	printBanner(app)

	if err := waitForShutdown(app); err != nil {
		app.Logger.Error("shutdown error", "error", err)
		return 1
	}

	return 0
}

// setup initializes all application components
func setup(configPath string) (*App, error) {
	app := &App{}

	// Setup logger (initially at Info level)
	app.Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	app.Logger.Info("starting Herald",
		"version", version,
		"config", configPath,
	)

	cfg, err := loadConfig(configPath, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	app.Config = cfg

	// Recreate logger with config's log level
	app.Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	// Channel registry
	app.Registry = registry.New(app.Logger)
	app.channels = registerChannels(app.Registry, cfg, app.Logger)
	if len(app.channels) == 0 {
		return nil, errors.New("no channels enabled")
	}

	// Delivery journal
	app.Store, err = store.New(filepath.Join(cfg.Server.DataDir, "journal.db"))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// Subscribers
	app.Subscribers = subscribe.NewRegistry(app.Logger)
	if cfg.RosterPath != "" {
		roster, err := subscribe.LoadRoster(cfg.RosterPath)
		if err != nil {
			app.Logger.Warn("roster not loaded", "path", cfg.RosterPath, "error", err)
		} else {
			roster.Register(app.Subscribers, app.Logger)
			app.Logger.Info("roster loaded", "subscribers", app.Subscribers.Len())
		}
	}

	// Dispatcher
	opts := []dispatch.Option{
		dispatch.WithSubscribers(app.Subscribers),
		dispatch.WithFlyweight(registry.NewFlyweight()),
		dispatch.WithDecorators(buildDecorators(cfg, app.Store, app.Logger)...),
	}
	if len(cfg.Windows) > 0 {
		chain, err := dispatch.NewWindowChain(windowsFromConfig(cfg.Windows))
		if err != nil {
			return nil, fmt.Errorf("build window chain: %w", err)
		}
		opts = append(opts, dispatch.WithWindows(chain))
	}
	app.Dispatcher = dispatch.New(app.Registry, app.Logger, opts...)
	app.Facade = dispatch.NewFacade(app.Dispatcher)

	// Scheduler
	if cfg.Scheduler.Enabled {
		executor := notifyExecutor{dispatcher: app.Dispatcher, facade: app.Facade}
		app.Scheduler = scheduler.New(executor, app.Logger)
		if err := app.Scheduler.LoadJobs(cfg.Scheduler.Jobs); err != nil {
			return nil, fmt.Errorf("load jobs: %w", err)
		}
	}

	// API server; deliveries flow to the WebSocket stream via the hook
	app.APIServer = api.NewServer(
		cfg.Server.Port,
		app.Dispatcher,
		app.Facade,
		app.Store,
		app.Scheduler,
		version,
		app.Logger,
	)
	app.Dispatcher.OnDelivery(app.APIServer.Stream().Broadcast)

	return app, nil
}

// loadConfig loads configuration from file or creates default
func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("no config found, creating default")
			cfg = config.DefaultConfig()
			if err := cfg.Save(path); err != nil {
				return nil, fmt.Errorf("save default config: %w", err)
			}
			logger.Info("default config created", "path", path)
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// registerChannels constructs the enabled channels and registers their
// factories. Each factory hands out the same instance so connections
// (MQTT in particular) are reused across sends.
func registerChannels(reg *registry.Registry, cfg *config.Config, logger *slog.Logger) []interfaces.Channel {
	var open []interfaces.Channel

	if c := cfg.Channels.SMS; c != nil && c.Enabled {
		ch := channels.NewSMS(c, logger)
		reg.Register(types.KindSMS, func() (interfaces.Channel, error) { return ch, nil })
		open = append(open, ch)
	}
	if c := cfg.Channels.Email; c != nil && c.Enabled {
		ch := channels.NewEmail(c, logger)
		reg.Register(types.KindEmail, func() (interfaces.Channel, error) { return ch, nil })
		open = append(open, ch)
	}
	if c := cfg.Channels.Push; c != nil && c.Enabled {
		ch := channels.NewPush(c, logger)
		reg.Register(types.KindPush, func() (interfaces.Channel, error) { return ch, nil })
		open = append(open, ch)
	}
	if c := cfg.Channels.Webhook; c != nil && c.Enabled {
		ch := channels.NewWebhook(c, logger)
		reg.Register(types.KindWebhook, func() (interfaces.Channel, error) { return ch, nil })
		open = append(open, ch)
	}

	logger.Info("channels registered", "kinds", reg.Kinds())
	return open
}

// buildDecorators assembles the send pipeline, outermost first: logging
// wraps signing wraps the journal wraps retry. The journal sits outside
// retry so each dispatch records one final row.
func buildDecorators(cfg *config.Config, st *store.Store, logger *slog.Logger) []decorate.Decorator {
	ds := []decorate.Decorator{decorate.Logging(logger)}
	if cfg.SigningKey != "" {
		ds = append(ds, decorate.Sign([]byte(cfg.SigningKey)))
	}
	ds = append(ds,
		decorate.Journal(st),
		decorate.Retry(decorate.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseBackoff: time.Duration(cfg.Retry.BaseBackoffMs) * time.Millisecond,
			Jitter:      time.Duration(cfg.Retry.JitterMs) * time.Millisecond,
		}),
	)
	return ds
}

func windowsFromConfig(entries []config.WindowConfig) []dispatch.Window {
	windows := make([]dispatch.Window, len(entries))
	for i, w := range entries {
		windows[i] = dispatch.Window{
			Name: w.Name,
			From: w.From,
			To:   w.To,
			Kind: types.Kind(w.Kind),
		}
	}
	return windows
}

// notifyExecutor adapts the dispatcher to the scheduler's executor surface.
type notifyExecutor struct {
	dispatcher *dispatch.Dispatcher
	facade     *dispatch.Facade
}

func (e notifyExecutor) Dispatch(ctx context.Context, kind types.Kind, to, body string) error {
	_, err := e.dispatcher.Dispatch(ctx, kind, to, body)
	return err
}

func (e notifyExecutor) DispatchRouted(ctx context.Context, to, body string) error {
	_, err := e.dispatcher.DispatchRouted(ctx, to, body)
	return err
}

func (e notifyExecutor) Broadcast(ctx context.Context, to, body string) error {
	_, err := e.facade.SendAll(ctx, to, body)
	return err
}

// startServices starts all services
func startServices(app *App) error {
	if app.Scheduler != nil {
		if err := app.Scheduler.Start(context.Background()); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	// Start API server in background
	app.apiContext, app.apiCancel = context.WithCancel(context.Background())
	go func() {
		if err := app.APIServer.Start(app.apiContext); err != nil {
			app.Logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// printBanner displays the startup banner
func printBanner(app *App) {
	fmt.Println()
	fmt.Printf("  Herald v%s\n", version)
	fmt.Printf("  API:      http://localhost:%d\n", app.Config.Server.Port)
	fmt.Printf("  Stream:   ws://localhost:%d/ws/deliveries\n", app.Config.Server.Port)
	fmt.Printf("  Channels: %v\n", app.Registry.Kinds())
	if app.Scheduler != nil {
		fmt.Printf("  Jobs:     %d\n", len(app.Scheduler.ListJobs()))
	}
	fmt.Println()
}

// waitForShutdown waits for termination signal and performs graceful shutdown
func waitForShutdown(app *App) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, getShutdownSignals()...)

	for {
		sig := <-sigCh

		if handlePlatformSignal(sig, app.Logger) {
			continue
		}

		// SIGINT or SIGTERM - proceed to shutdown
		app.Logger.Info("shutdown signal received", "signal", sig)
		break
	}

	if app.apiCancel != nil {
		app.apiCancel()
	}

	if app.Scheduler != nil {
		app.Scheduler.Stop()
	}

	for _, ch := range app.channels {
		if err := ch.Close(); err != nil {
			app.Logger.Error("failed to close channel", "channel", ch.Name(), "error", err)
		}
	}

	if err := app.Store.Close(); err != nil {
		app.Logger.Error("failed to close journal", "error", err)
	}

	app.Logger.Info("Herald stopped")
	return nil
}
