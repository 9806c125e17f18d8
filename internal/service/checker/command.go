package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/cstation/internal/config"
	"github.com/oshokin/cstation/internal/logger"
	"github.com/oshokin/cstation/internal/service/common"
)

// Options controls the checker polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// PollInterval defines the interval between status checks.
	PollInterval time.Duration
	// ExitOnAlert makes Run return ErrAlert once the guard raises the alarm.
	ExitOnAlert bool
}

// DefaultPollInterval defines the polling interval when none is given.
const DefaultPollInterval = 5 * time.Second

// alertState is the guard state reported while the alarm sounds.
const alertState = "alert"

// ErrAlert is returned by Run in ExitOnAlert mode when the guard alarms.
var ErrAlert = errors.New("guard raised the alarm")

// StatusSource returns the current station status fields.
type StatusSource interface {
	Status(ctx context.Context) (map[string]any, error)
}

// Run polls the station status and logs every guard state change.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "cstation-watch")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Determine server address: command line argument overrides config.
	serverAddress := cfg.ListenAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// Detect current system actor for the station audit log.
	actor, err := common.DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	// Establish gRPC connection with timeout from configuration.
	client, err := common.Dial(ctx, serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithActor(actor))
	if err != nil {
		return fmt.Errorf("dial station: %w", err)
	}

	// Ensure connection cleanup on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Watching station", "server_address", serverAddress)

	return Watch(ctx, client, opts)
}

// Watch polls source every opts.PollInterval until ctx is canceled.
func Watch(ctx context.Context, source StatusSource, opts *Options) error {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	// Setup polling ticker with fixed interval.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last string

	// Main polling loop until context cancellation or alert.
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
			state, err := checkState(ctx, source, last)
			if err != nil {
				logger.ErrorKV(ctx, "Check state failed", "error", err)
				continue
			}

			last = state

			if opts.ExitOnAlert && state == alertState {
				return ErrAlert
			}
		}
	}
}

// checkState fetches the guard state and logs it when it differs from last.
func checkState(ctx context.Context, source StatusSource, last string) (string, error) {
	fields, err := source.Status(ctx)
	if err != nil {
		return last, err
	}

	state, _ := fields["guard_state"].(string)
	if state == last {
		return state, nil
	}

	switch state {
	case alertState:
		logger.ErrorKV(ctx, "Guard state changed", "from", last, "to", state)
	default:
		logger.InfoKV(ctx, "Guard state changed", "from", last, "to", state)
	}

	return state, nil
}
