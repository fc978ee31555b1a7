// midibridge - MQTT to MIDI delivery bridge
//
// This is the main entry point for the midibridge application.
// midibridge feeds high-rate control values from MQTT producers into a
// MIDI endpoint daemon with bounded latency: values too old to be
// musically useful are dropped rather than delivered late.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/int80/midibridge/internal/bridges/midi"
	"github.com/int80/midibridge/internal/infrastructure/config"
	"github.com/int80/midibridge/internal/infrastructure/influxdb"
	"github.com/int80/midibridge/internal/infrastructure/logging"
	"github.com/int80/midibridge/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting midibridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB, cfg.Bridge.ID)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Connect to the MIDI endpoint daemon
	driver, err := midi.Dial(ctx, midi.DriverConfig{
		Connection: cfg.MIDI.Connection,
	})
	if err != nil {
		return fmt.Errorf("connecting to MIDI endpoint: %w", err)
	}
	log.Info("MIDI driver connected", "connection", cfg.MIDI.Connection)

	// Build the delivery pipeline. The device owns the driver and closes
	// it during Shutdown.
	deviceOpts := midi.DeviceOptions{
		Driver: driver,
		Config: midi.Config{
			Channel:          uint8(cfg.MIDI.Channel),
			PacketBufferSize: cfg.MIDI.PacketBufferSize,
			StalenessBound:   cfg.GetStalenessBound(),
			WaitTimeout:      cfg.GetWaitTimeout(),
		},
		Logger: log.With("component", "midi"),
	}
	if influxClient != nil {
		deviceOpts.Recorder = influxClient
	}

	device, err := midi.NewDevice(deviceOpts)
	if err != nil {
		return fmt.Errorf("creating MIDI device: %w", err)
	}
	if err := device.Init(); err != nil {
		return fmt.Errorf("initialising MIDI device: %w", err)
	}
	defer func() {
		log.Info("shutting down MIDI device")
		device.Shutdown()
	}()

	// Start the MQTT-fed bridge
	bridge, err := midi.NewBridge(midi.BridgeOptions{
		BridgeID:       cfg.Bridge.ID,
		Version:        version,
		Device:         device,
		MQTTClient:     mqttClient,
		Logger:         log.With("component", "bridge"),
		HealthInterval: midi.HealthIntervalOption{Duration: cfg.GetHealthInterval()},
	})
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}
	if err := bridge.Start(ctx); err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}
	defer func() {
		log.Info("stopping bridge")
		bridge.Stop()
	}()

	// Start the simulation producer (if enabled)
	if cfg.MIDI.Simulation.Enabled {
		sim := newSimulation(device, cfg, log.With("component", "simulation"))
		sim.Start(ctx)
		defer func() {
			log.Info("stopping simulation")
			sim.Stop()
		}()
		log.Info("simulation started",
			"control_index", cfg.MIDI.Simulation.ControlIndex,
			"interval", cfg.GetSimulationInterval().String(),
		)
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, mqttClient, influxClient, device); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order:
	// 1. Simulation (if enabled)
	// 2. Bridge (health reporting)
	// 3. MIDI device (drains worker, closes driver)
	// 4. InfluxDB (if enabled)
	// 5. MQTT

	log.Info("midibridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses MIDIBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MIDIBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//   - device: MIDI device to check
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, influxClient *influxdb.Client, device *midi.Device) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	if device.State() != midi.StateRunning {
		return fmt.Errorf("midi: device state %s, want %s", device.State(), midi.StateRunning)
	}
	if !device.Stats().Driver.Connected {
		return fmt.Errorf("midi: %w", midi.ErrNotConnected)
	}

	return nil
}
