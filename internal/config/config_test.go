package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults and format validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	// Empty config gets defaults.
	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultListenAddress, cfg.ListenAddress)
	require.Equal(t, DefaultStorageFilename, cfg.StorageFile)
	require.Equal(t, DefaultPollInterval, cfg.PollInterval)
	require.Equal(t, DefaultToneTimerMaxPeriod, cfg.ToneTimerMaxPeriod)
	require.Equal(t, DriverSimulated, cfg.Hardware.Driver)
	require.Equal(t, "gpiochip0", cfg.Hardware.Chip)

	// Bad socket.
	require.Error(t, Validate(&Config{ListenAddress: "bad:address"}))

	// Bad http socket.
	require.Error(t, Validate(&Config{HTTPAddress: "nope:nope"}))

	// Unknown driver.
	require.ErrorIs(t, Validate(&Config{Hardware: Hardware{Driver: "spi"}}), errUnknownDriver)

	// Poll interval too short.
	require.ErrorIs(t, Validate(&Config{PollInterval: time.Millisecond}), errPollInterval)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := Default()
	cfg.ListenAddress = "127.0.0.1:50051"
	cfg.Hardware.Driver = DriverGPIOCDev
	cfg.Hardware.Pins.Presence = 4
	cfg.MQTT.Broker = "tcp://127.0.0.1:1883"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_PartialFileKeepsPinDefaults verifies that omitted pins keep their defaults.
func TestLoad_PartialFileKeepsPinDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":50551\"\nhardware:\n  driver: simulated\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":50551", cfg.ListenAddress)
	require.Equal(t, 7, cfg.Hardware.Pins.Tone)
	require.Equal(t, 17, cfg.Hardware.Pins.Presence)
}

// TestLoad_MissingFile returns a wrapped read error.
func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
