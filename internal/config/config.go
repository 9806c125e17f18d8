package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of the station daemon and its control CLI.
type Config struct {
	// ListenAddress is the gRPC command endpoint; the CLI dials the same address.
	ListenAddress string `yaml:"listen_addr"`
	// HTTPAddress serves the websocket status feed; empty disables it.
	HTTPAddress string `yaml:"http_addr"`
	// StorageFile is the path of the persisted EEPROM image.
	StorageFile string `yaml:"storage_file"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Timeout bounds client RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// PollInterval is the period of the cooperative main loop.
	PollInterval time.Duration `yaml:"poll_interval"`
	// ToneTimerMaxPeriod is the longest period the tone timer can be programmed with.
	ToneTimerMaxPeriod time.Duration `yaml:"tone_timer_max_period"`
	// Hardware selects and configures the GPIO driver.
	Hardware Hardware `yaml:"hardware"`
	// MQTT configures status publishing and lux ingestion.
	MQTT MQTT `yaml:"mqtt"`
}

// Hardware describes how the station reaches its pins.
type Hardware struct {
	// Driver is DriverSimulated or DriverGPIOCDev.
	Driver string `yaml:"driver"`
	// Chip is the GPIO character device name, e.g. gpiochip0.
	Chip string `yaml:"chip"`
	// Pins maps functions to line offsets.
	Pins Pins `yaml:"pins"`
}

// Pins holds line offsets on the GPIO chip.
type Pins struct {
	Tone     int `yaml:"tone"`
	Blue     int `yaml:"blue"`
	Yellow   int `yaml:"yellow"`
	Red      int `yaml:"red"`
	Fan      int `yaml:"fan"`
	Light    int `yaml:"light"`
	Presence int `yaml:"presence"`
	Reset    int `yaml:"reset"`
}

// MQTT holds broker settings. An empty Broker disables MQTT entirely.
type MQTT struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
}

const (
	// DefaultConfigFilename is the default filename for station settings.
	DefaultConfigFilename = "cstation-settings.yaml"

	// DefaultStorageFilename is the default filename of the EEPROM image.
	DefaultStorageFilename = "cstation-eeprom.json"

	// DefaultListenAddress is used when the settings file omits listen_addr.
	DefaultListenAddress = "127.0.0.1:50551"

	// DefaultTimeout is the default duration for client RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultPollInterval is the default main loop period.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultToneTimerMaxPeriod mirrors a 16-bit hardware timer with the largest prescaler.
	DefaultToneTimerMaxPeriod = 8 * time.Second

	// DefaultFilePermissions is the permission of files written by the station.
	DefaultFilePermissions = 0o600

	// DriverSimulated keeps all outputs in memory; useful without hardware.
	DriverSimulated = "simulated"
	// DriverGPIOCDev drives real pins through the Linux GPIO character device.
	DriverGPIOCDev = "gpiocdev"

	defaultChip        = "gpiochip0"
	defaultClientID    = "cstation"
	defaultTopicPrefix = "cstation"
	defaultLogLevel    = "info"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownDriver is returned for an unsupported hardware driver name.
	errUnknownDriver = errors.New("unknown hardware driver")
	// errPollInterval is returned when the poll interval is too short to be useful.
	errPollInterval = errors.New("poll interval must be at least 10ms")
)

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := &Config{
		ListenAddress: DefaultListenAddress,
		Hardware: Hardware{
			Pins: Pins{
				Tone:     7,
				Blue:     22,
				Yellow:   24,
				Red:      26,
				Fan:      5,
				Light:    6,
				Presence: 17,
				Reset:    27,
			},
		},
	}

	//nolint:errcheck // Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks cfg and fills defaults for optional fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if cfg.HTTPAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.HTTPAddress); err != nil {
			return fmt.Errorf("invalid http address: %w", err)
		}
	}

	if cfg.StorageFile == "" {
		cfg.StorageFile = DefaultStorageFilename
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if cfg.PollInterval < 10*time.Millisecond {
		return errPollInterval
	}

	if cfg.ToneTimerMaxPeriod <= 0 {
		cfg.ToneTimerMaxPeriod = DefaultToneTimerMaxPeriod
	}

	switch cfg.Hardware.Driver {
	case "":
		cfg.Hardware.Driver = DriverSimulated
	case DriverSimulated, DriverGPIOCDev:
	default:
		return fmt.Errorf("%w: %q", errUnknownDriver, cfg.Hardware.Driver)
	}

	if cfg.Hardware.Chip == "" {
		cfg.Hardware.Chip = defaultChip
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = defaultClientID
	}

	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = defaultTopicPrefix
	}

	return nil
}
