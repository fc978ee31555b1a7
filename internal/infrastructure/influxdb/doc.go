// Package influxdb provides InfluxDB connectivity for midibridge.
//
// It wraps the official influxdb-client-go v2 library with midibridge-specific
// patterns for connection management, telemetry writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Delivery latency per control (enqueue to send)
//   - Staleness drops and their measured age
//   - Driver send failures
//   - Periodic pipeline counter snapshots
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, cfg.Bridge.ID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Plug directly into the delivery pipeline as its telemetry recorder
//	client.RecordDelivery(7, 800*time.Microsecond)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size,
// flush_interval). A recorder write on the delivery path never blocks the
// worker.
package influxdb
