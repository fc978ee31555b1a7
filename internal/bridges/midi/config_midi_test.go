package midi

import (
	"strings"
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.PacketBufferSize != DefaultPacketBufferSize {
		t.Errorf("PacketBufferSize = %d, want %d", cfg.PacketBufferSize, DefaultPacketBufferSize)
	}
	if cfg.StalenessBound != DefaultStalenessBound {
		t.Errorf("StalenessBound = %v, want %v", cfg.StalenessBound, DefaultStalenessBound)
	}
	if cfg.WaitTimeout != DefaultWaitTimeout {
		t.Errorf("WaitTimeout = %v, want %v", cfg.WaitTimeout, DefaultWaitTimeout)
	}
}

func TestConfig_ApplyDefaultsKeepsExplicit(t *testing.T) {
	cfg := Config{
		Channel:          3,
		PacketBufferSize: 64,
		StalenessBound:   5 * time.Millisecond,
		WaitTimeout:      time.Second,
	}
	cfg.ApplyDefaults()

	if cfg.PacketBufferSize != 64 || cfg.StalenessBound != 5*time.Millisecond || cfg.WaitTimeout != time.Second {
		t.Errorf("ApplyDefaults overwrote explicit values: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero value", Config{}, false},
		{"max channel", Config{Channel: 15}, false},
		{"channel out of range", Config{Channel: 16}, true},
		{"buffer below message size", Config{PacketBufferSize: 2}, true},
		{"buffer exactly message size", Config{PacketBufferSize: 3}, false},
		{"negative staleness", Config{StalenessBound: -time.Millisecond}, true},
		{"negative wait timeout", Config{WaitTimeout: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// Zero values are valid (they select defaults), so the rejections are for
// negative values only and the messages must say so.
func TestConfig_ValidateNegativeMessages(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"packet buffer size", Config{PacketBufferSize: -1}},
		{"staleness bound", Config{StalenessBound: -time.Millisecond}},
		{"wait timeout", Config{WaitTimeout: -time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), "must not be negative") {
				t.Errorf("Validate() error = %q, want mention of negative value", err)
			}
		})
	}
}
