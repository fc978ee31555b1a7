// Package midi implements the MIDI output bridge for midibridge.
//
// This package funnels high-rate control values (motion sensors, MQTT
// publishers, the built-in simulation sweep) to a MIDI output endpoint.
// Values arrive far faster than the endpoint can usefully consume them, so
// updates flow through a bounded-latency delivery pipeline instead of being
// written synchronously from the producing goroutine.
//
// # Architecture
//
// The pipeline has exactly two concurrent roles: any number of producers
// calling EnqueueUpdate, and one delivery worker draining the queue.
//
//	┌───────────┐              ┌──────────────┐            ┌──────────────┐
//	│ Producers │ ──enqueue──► │ UpdateQueue  │ ──drain──► │   Endpoint   │ ──► MIDI driver
//	│ (MQTT,    │              │ (FIFO+signal)│  (worker)  │ (pkt buffer) │
//	│  sim, …)  │              └──────────────┘            └──────────────┘
//	└───────────┘
//
// # Key Responsibilities
//
//   - Accept control updates without blocking the producer beyond a lock
//   - Drain the queue in batches and forward updates in submission order
//   - Drop updates older than the staleness bound instead of delivering late
//   - Encode the 3-byte control-change payload and re-arm the packet buffer
//     after every send
//   - Manage device lifecycle (init, run, shutdown) and surface statistics
//
// # Delivery Guarantees
//
// Delivery is best-effort: every delivered update is fresh and in submission
// order, but updates may be dropped under load (staleness) and anything still
// queued at shutdown is discarded. This downsampling is intentional — the
// newest value is the only one that matters for a control parameter.
//
// # Thread Safety
//
// All exported types are safe for concurrent use from multiple goroutines.
// The endpoint's packet buffer is guarded by its own lock so exactly one
// writer touches it at a time.
package midi
