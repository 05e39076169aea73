package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	api "github.com/oshokin/alarm-clock/internal/api/http/alarms"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/notifier"
	"github.com/oshokin/alarm-clock/internal/registry"
	repository "github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

// Options controls the alarm-clock-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override.
	ListenAddress string
	// StoreFile specifies the path to persist alarms JSON.
	StoreFile string
}

// shutdownTimeout bounds how long in-flight requests may run during shutdown.
const shutdownTimeout = 10 * time.Second

// Run wires the engine together and serves the HTTP API until the context is
// canceled. Configuration is loaded first; command line options override it.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-clock-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	storeFile := settings.StoreFile
	if opts.StoreFile != "" {
		storeFile = opts.StoreFile
	}

	listenAddress := settings.ListenAddress
	if opts.ListenAddress != "" {
		listenAddress = opts.ListenAddress
	}

	repo := repository.NewFileRepository(storeFile)
	bus := events.NewBus()

	defer bus.Close()

	sched := scheduler.New(bus, scheduler.WithResyncInterval(settings.ResyncInterval))

	reg, err := registry.New(ctx, repo, sched, bus)
	if err != nil {
		return fmt.Errorf("initialise registry: %w", err)
	}

	sched.BindRegistry(reg)

	if err = reg.ArmAll(ctx); err != nil {
		return fmt.Errorf("arm alarms: %w", err)
	}

	go sched.Run(ctx)

	pushService := notifier.NewService(settings.NtfyTopic, settings.NtfyTimeout)

	pushSub := bus.Subscribe()
	defer pushSub.Close()

	go notifier.Consume(ctx, pushService, pushSub)

	handler := api.NewHandler(reg, bus)
	httpServer := &http.Server{
		Addr:              listenAddress,
		Handler:           api.NewRouter(handler, settings.CORSOrigins),
		ReadHeaderTimeout: settings.Timeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	logger.InfoKV(ctx, "Alarm server listening",
		"listen_address", listenAddress, "store_file", storeFile)

	// Done channel is closed after Shutdown finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Errorf(ctx, "Failed to shut down cleanly: %v", shutdownErr)
		}

		close(done)
	}()

	if err = httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	logger.Info(ctx, "HTTP server stopped")

	return nil
}
