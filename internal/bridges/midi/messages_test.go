package midi

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestTopicBuilders(t *testing.T) {
	if got := ControlSubscribeTopic(); got != "midibridge/control/#" {
		t.Errorf("ControlSubscribeTopic() = %q", got)
	}
	if got := ControlTopic("leap-palm-y"); got != "midibridge/control/leap-palm-y" {
		t.Errorf("ControlTopic() = %q", got)
	}
	if got := HealthTopic(); got != "midibridge/health" {
		t.Errorf("HealthTopic() = %q", got)
	}
}

func TestParseControlValueMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    ControlValueMessage
		wantErr error
	}{
		{
			name:    "valid",
			payload: `{"index": 5, "value": 100, "source": "leap-palm-y"}`,
			want:    ControlValueMessage{Index: 5, Value: 100, Source: "leap-palm-y"},
		},
		{
			name:    "minimal",
			payload: `{"index": 0, "value": 0}`,
			want:    ControlValueMessage{},
		},
		{
			name:    "malformed json",
			payload: `{"index": `,
			wantErr: errParse,
		},
		{
			name:    "index out of range",
			payload: `{"index": 120, "value": 0}`,
			wantErr: ErrControlRange,
		},
		{
			name:    "negative index",
			payload: `{"index": -1, "value": 0}`,
			wantErr: ErrControlRange,
		},
		{
			name:    "value out of range",
			payload: `{"index": 0, "value": 128}`,
			wantErr: ErrControlRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseControlValueMessage([]byte(tt.payload))
			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.wantErr != errParse && !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Index != tt.want.Index || got.Value != tt.want.Value || got.Source != tt.want.Source {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// errParse marks cases where any error is acceptable (JSON syntax failures
// have no sentinel).
var errParse = errors.New("any parse error")

func TestHealthMessage_JSON(t *testing.T) {
	msg := HealthMessage{
		BridgeID:        "midibridge-01",
		Status:          HealthHealthy,
		Version:         "1.0.0",
		Timestamp:       time.Now().UTC(),
		Uptime:          120,
		QueueDepth:      1,
		Enqueued:        100,
		Forwarded:       95,
		Dropped:         5,
		SendErrors:      0,
		DriverConnected: true,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, field := range []string{
		"bridge_id", "status", "version", "timestamp", "uptime_seconds",
		"queue_depth", "updates_enqueued", "updates_forwarded",
		"updates_dropped", "send_errors", "driver_connected",
	} {
		if _, ok := raw[field]; !ok {
			t.Errorf("health message missing field %q", field)
		}
	}

	if raw["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", raw["status"])
	}
}
