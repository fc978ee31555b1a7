package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordDelivery writes one successful control-value delivery.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - index: The MIDI controller number the value was delivered to
//   - latency: Time from enqueue to successful send
func (c *Client) RecordDelivery(index uint8, latency time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"delivery",
		map[string]string{
			"bridge_id": c.bridgeID,
			"control":   strconv.Itoa(int(index)),
		},
		map[string]interface{}{
			"latency_us": latency.Microseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// RecordDrop writes one staleness drop.
//
// Parameters:
//   - index: The MIDI controller number of the dropped update
//   - age: How old the update was when the worker examined it
func (c *Client) RecordDrop(index uint8, age time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"drop",
		map[string]string{
			"bridge_id": c.bridgeID,
			"control":   strconv.Itoa(int(index)),
		},
		map[string]interface{}{
			"age_us": age.Microseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// RecordSendError writes one driver send failure.
func (c *Client) RecordSendError() {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"send_error",
		map[string]string{
			"bridge_id": c.bridgeID,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePipelineStats writes a snapshot of pipeline counters.
//
// Called periodically alongside health reporting so dashboards can graph
// queue depth and throughput over time.
//
// Parameters:
//   - queueDepth: Current number of queued updates
//   - enqueued, forwarded, dropped, sendErrors: Cumulative pipeline counters
func (c *Client) WritePipelineStats(queueDepth int, enqueued, forwarded, dropped, sendErrors uint64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"pipeline_stats",
		map[string]string{
			"bridge_id": c.bridgeID,
		},
		map[string]interface{}{
			"queue_depth": queueDepth,
			"enqueued":    int64(enqueued),
			"forwarded":   int64(forwarded),
			"dropped":     int64(dropped),
			"send_errors": int64(sendErrors),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
