package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/cstation/internal/config"
	"github.com/oshokin/cstation/internal/logger"
	"github.com/oshokin/cstation/internal/service/common"
)

// Options configures a single station command.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides the station address from config when specified.
	ServerAddress string

	// Wait keeps retrying while the station is unavailable.
	Wait bool
}

// Action is the operation performed with a connected client.
type Action func(ctx context.Context, client *common.Client) error

// defaultRetryInterval defines the delay between attempts in wait mode.
const defaultRetryInterval = 1 * time.Second

// Run executes action against the station, retrying unavailable errors
// until success or cancellation when opts.Wait is set.
func Run(ctx context.Context, opts *Options, action Action) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "cstation-ctl")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	// Use server address from options if provided, otherwise use config.
	serverAddress := cfg.ListenAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// Identify current user and hostname for the station audit log.
	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithActor(actor))
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Sending station command", "server_address", serverAddress, "actor", actor)

	return retry(ctx, opts.Wait, defaultRetryInterval, func() error {
		return action(ctx, client)
	})
}

// retry runs attempt once, then again every interval while it fails with
// codes.Unavailable and wait is set.
func retry(ctx context.Context, wait bool, interval time.Duration, attempt func() error) error {
	err := attempt()
	if !wait || !retryable(err) {
		return err
	}

	// Setup retry timer for subsequent attempts.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		logger.WarnKV(ctx, "Station unavailable, retrying", "error", err)

		select {
		case <-ctx.Done():
			return errors.Join(ctx.Err(), err)
		case <-ticker.C:
			err = attempt()
			if !retryable(err) {
				return err
			}
		}
	}
}

func retryable(err error) bool {
	return err != nil && status.Code(err) == codes.Unavailable
}

// PrintStatus writes the status fields as sorted "key: value" lines.
func PrintStatus(w io.Writer, fields map[string]any) error {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var sb strings.Builder

	for _, key := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", key, formatValue(fields[key]))
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

// formatValue renders a structpb-decoded value for humans.
func formatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "-"
	case float64:
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}

		return fmt.Sprintf("%.2f", value)
	default:
		return fmt.Sprint(value)
	}
}
