package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"

	api "github.com/oshokin/cstation/internal/api/grpc/station"
	"github.com/oshokin/cstation/internal/api/ws"
	"github.com/oshokin/cstation/internal/clock"
	"github.com/oshokin/cstation/internal/config"
	"github.com/oshokin/cstation/internal/hardware/timer"
	"github.com/oshokin/cstation/internal/indicator"
	"github.com/oshokin/cstation/internal/logger"
	"github.com/oshokin/cstation/internal/mqtt"
	"github.com/oshokin/cstation/internal/repository/eeprom"
)

// Options controls the station daemon and its configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StorageFile overrides the path of the persisted EEPROM image.
	StorageFile string
	// LogLevel overrides the log level from the settings file.
	LogLevel string
}

// ProcessName is the executable name checked by the single instance guard.
const ProcessName = "cstation"

// blinkTimerMaxPeriod caps the guard blink timer.
const blinkTimerMaxPeriod = 8 * time.Second

// httpShutdownTimeout bounds the websocket server shutdown.
const httpShutdownTimeout = 5 * time.Second

// Run starts the station and blocks until ctx is canceled or a server fails.
//
//nolint:funlen,cyclop // Linear start-up sequence; splitting hides the order of resources.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "cstation")
	log := logger.FromContext(ctx)

	// A failing server cancels everything else.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Load configuration first to get station settings.
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logLevel := settings.LogLevel
	if opts.LogLevel != "" {
		logLevel = opts.LogLevel
	}

	if lvl, ok := logger.ParseLogLevel(logLevel); ok {
		logger.SetLevel(lvl)
	}

	// Two stations would fight over the same pins.
	if err = ensureSingleInstance(ProcessName); err != nil {
		return err
	}

	// Use StorageFile from config unless overridden by command line option.
	storageFile := settings.StorageFile
	if opts.StorageFile != "" {
		storageFile = opts.StorageFile
	}

	listenAddress := settings.ListenAddress
	if opts.ListenAddress != "" {
		listenAddress = opts.ListenAddress
	}

	// A damaged image is not fatal: the station starts with defaults.
	store, err := eeprom.Open(ctx, eeprom.NewFileRepository(storageFile))
	if err != nil {
		logger.WarnKV(ctx, "EEPROM image unreadable, starting blank", "storage_file", storageFile, "error", err)
	}

	if nameErr := rememberStationName(ctx, store, settings.MQTT.ClientID, log.Named("eeprom")); nameErr != nil {
		logger.WarnKV(ctx, "Station name not stored", "error", nameErr)
	}

	board, err := openBoard(settings.Hardware)
	if err != nil {
		return fmt.Errorf("open board: %w", err)
	}

	defer func() {
		if closeErr := board.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Board close failed", "error", closeErr)
		}
	}()

	// Red while the station is being brought up.
	panel := indicator.NewPanel(board, log.Named("indicator"))
	panel.ConfigState(1)

	hub := ws.NewHub(log.Named("ws"))
	publishers := []Publisher{hub}

	// The service is created after MQTT connects; readings that arrive
	// earlier are dropped.
	var current atomic.Pointer[service]

	if settings.MQTT.Broker != "" {
		client, mqttErr := mqtt.Connect(settings.MQTT, func(lux float64) {
			svc := current.Load()
			if svc == nil {
				return
			}

			if luxErr := svc.ReportLux(ctx, lux); luxErr != nil {
				logger.DebugKV(ctx, "Lux reading rejected", "lux", lux, "error", luxErr)
			}
		}, panel, log.Named("mqtt"))
		if mqttErr != nil {
			return fmt.Errorf("connect mqtt: %w", mqttErr)
		}

		defer func() {
			_ = client.Close()
		}()

		publishers = append(publishers, client)
	}

	svc, err := newService(deps{
		clock:      clock.System{},
		board:      board,
		panel:      panel,
		store:      store,
		toneTimer:  timer.NewPeriodic(settings.ToneTimerMaxPeriod),
		blinkTimer: timer.NewPeriodic(blinkTimerMaxPeriod),
		publishers: publishers,
		poll:       settings.PollInterval,
		log:        log,
	})
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	current.Store(svc)

	// Setup TCP listener for gRPC server.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(api.LoggingInterceptor(log.Named("grpc"))))
	api.RegisterStationServer(grpcServer, api.NewServer(svc))

	var httpServer *http.Server

	if settings.HTTPAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)

		httpServer = &http.Server{
			Addr:              settings.HTTPAddress,
			Handler:           mux,
			ReadHeaderTimeout: httpShutdownTimeout,
		}
	}

	logger.InfoKV(ctx, "Station listening",
		"listen_address", listenAddress,
		"http_address", settings.HTTPAddress,
		"storage_file", storageFile,
		"driver", settings.Hardware.Driver)

	panel.ConfigState(0)

	loopDone := make(chan struct{})

	go func() {
		svc.run(ctx)
		close(loopDone)
	}()

	go hub.Run(ctx)

	errs := make(chan error, 2)

	if httpServer != nil {
		go func() {
			if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				errs <- fmt.Errorf("serve http: %w", serveErr)
			}
		}()
	}

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the servers fully stop before returning.
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
		case <-loopDone:
		}

		logger.Info(ctx, "Shutting down servers")
		grpcServer.GracefulStop()

		if httpServer != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), httpShutdownTimeout)
			defer shutdownCancel()

			_ = httpServer.Shutdown(shutdownCtx)
		}

		close(done)
	}()

	go func() {
		if serveErr := grpcServer.Serve(lis); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			errs <- fmt.Errorf("serve gRPC: %w", serveErr)
		}
	}()

	select {
	case err = <-errs:
		cancel()
	case <-done:
	}

	<-done
	<-loopDone
	logger.Info(ctx, "Station stopped")

	return err
}
