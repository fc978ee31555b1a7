package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for midibridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Bridge   BridgeConfig   `yaml:"bridge"`
	MIDI     MIDIConfig     `yaml:"midi"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BridgeConfig contains bridge identity settings.
type BridgeConfig struct {
	ID             string `yaml:"id"`
	HealthInterval int    `yaml:"health_interval"` // seconds
}

// MIDIConfig contains MIDI driver and delivery pipeline settings.
type MIDIConfig struct {
	// Connection is the driver connection URL
	// (e.g., "unix:///run/midid.sock" or "tcp://localhost:7050").
	Connection string `yaml:"connection"`

	// Channel is the MIDI channel (0-15) for outgoing messages.
	Channel int `yaml:"channel"`

	// PacketBufferSize is the endpoint packet buffer capacity in bytes.
	PacketBufferSize int `yaml:"packet_buffer_size"`

	// StalenessBoundMs is the maximum update age in milliseconds before the
	// delivery worker drops it instead of forwarding.
	StalenessBoundMs float64 `yaml:"staleness_bound_ms"`

	// WaitTimeout is the worker's idle wake interval in seconds.
	WaitTimeout int `yaml:"wait_timeout"`

	// Simulation contains the built-in demo producer settings.
	Simulation SimulationConfig `yaml:"simulation"`
}

// SimulationConfig contains settings for the built-in control sweep producer.
type SimulationConfig struct {
	// Enabled turns the simulation producer on.
	Enabled bool `yaml:"enabled"`

	// ControlIndex is the controller number the sweep writes to.
	ControlIndex int `yaml:"control_index"`

	// IntervalMs is the sweep step interval in milliseconds.
	IntervalMs int `yaml:"interval_ms"`

	// Notes also sends a periodic note through the direct note path.
	Notes bool `yaml:"notes"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings for delivery telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string            `yaml:"level"`
	Format string            `yaml:"format"`
	Output string            `yaml:"output"`
	File   FileLoggingConfig `yaml:"file"`
}

// FileLoggingConfig contains file-based logging settings with rotation.
type FileLoggingConfig struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"max_size"` // megabytes
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
	Compress   bool   `yaml:"compress"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MIDIBRIDGE_SECTION_KEY
// For example: MIDIBRIDGE_MIDI_CONNECTION, MIDIBRIDGE_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			ID:             "midibridge-01",
			HealthInterval: 30,
		},
		MIDI: MIDIConfig{
			Connection:       "unix:///run/midid.sock",
			Channel:          0,
			PacketBufferSize: 512,
			StalenessBoundMs: 2,
			WaitTimeout:      2,
			Simulation: SimulationConfig{
				Enabled:      false,
				ControlIndex: 1,
				IntervalMs:   50,
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "midibridge",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: MIDIBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MIDI
	if v := os.Getenv("MIDIBRIDGE_MIDI_CONNECTION"); v != "" {
		cfg.MIDI.Connection = v
	}
	if v := os.Getenv("MIDIBRIDGE_MIDI_CHANNEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MIDI.Channel = n
		}
	}

	// MQTT
	if v := os.Getenv("MIDIBRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MIDIBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MIDIBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("MIDIBRIDGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Bridge.ID == "" {
		errs = append(errs, "bridge.id is required")
	}

	if c.MIDI.Connection == "" {
		errs = append(errs, "midi.connection is required")
	}
	if c.MIDI.Channel < 0 || c.MIDI.Channel > 15 {
		errs = append(errs, "midi.channel must be 0-15")
	}
	if c.MIDI.StalenessBoundMs <= 0 {
		errs = append(errs, "midi.staleness_bound_ms must be positive")
	}
	if c.MIDI.WaitTimeout <= 0 {
		errs = append(errs, "midi.wait_timeout must be positive")
	}
	if c.MIDI.Simulation.Enabled {
		if c.MIDI.Simulation.ControlIndex < 0 || c.MIDI.Simulation.ControlIndex >= 120 {
			errs = append(errs, "midi.simulation.control_index must be 0-119")
		}
		if c.MIDI.Simulation.IntervalMs <= 0 {
			errs = append(errs, "midi.simulation.interval_ms must be positive")
		}
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set MIDIBRIDGE_INFLUXDB_TOKEN)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetStalenessBound returns the delivery staleness bound as a Duration.
func (c *Config) GetStalenessBound() time.Duration {
	return time.Duration(c.MIDI.StalenessBoundMs * float64(time.Millisecond))
}

// GetWaitTimeout returns the worker idle wake interval as a Duration.
func (c *Config) GetWaitTimeout() time.Duration {
	return time.Duration(c.MIDI.WaitTimeout) * time.Second
}

// GetHealthInterval returns the health reporting interval as a Duration.
func (c *Config) GetHealthInterval() time.Duration {
	return time.Duration(c.Bridge.HealthInterval) * time.Second
}

// GetSimulationInterval returns the simulation step interval as a Duration.
func (c *Config) GetSimulationInterval() time.Duration {
	return time.Duration(c.MIDI.Simulation.IntervalMs) * time.Millisecond
}
