package midi

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateControl(t *testing.T) {
	tests := []struct {
		name    string
		index   uint8
		value   uint8
		wantErr bool
	}{
		{"zero index and value", 0, 0, false},
		{"max valid index", MaxControlIndex - 1, 0, false},
		{"max valid value", 0, MaxControlValue - 1, false},
		{"index at bound", MaxControlIndex, 0, true},
		{"channel mode index", 123, 0, true},
		{"value at bound", 0, MaxControlValue, true},
		{"value over bound", 0, 200, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateControl(tt.index, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateControl(%d, %d) error = %v, wantErr %v", tt.index, tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrControlRange) {
				t.Errorf("error = %v, want ErrControlRange", err)
			}
		})
	}
}

func TestValidateNote(t *testing.T) {
	tests := []struct {
		name     string
		note     uint8
		velocity uint8
		wantErr  bool
	}{
		{"middle C", 60, 100, false},
		{"max valid", 127, 127, false},
		{"note over bound", 128, 0, true},
		{"velocity over bound", 0, 128, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNote(tt.note, tt.velocity)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNote(%d, %d) error = %v, wantErr %v", tt.note, tt.velocity, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNoteRange) {
				t.Errorf("error = %v, want ErrNoteRange", err)
			}
		})
	}
}

func TestEncodeControlChange(t *testing.T) {
	tests := []struct {
		name    string
		channel uint8
		index   uint8
		value   uint8
		want    [3]byte
	}{
		{"channel 0", 0, 5, 100, [3]byte{0xB0, 0x05, 0x64}},
		{"channel 3", 3, 7, 127, [3]byte{0xB3, 0x07, 0x7F}},
		{"channel 15", 15, 0, 0, [3]byte{0xBF, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeControlChange(tt.channel, tt.index, tt.value)
			if got != tt.want {
				t.Errorf("EncodeControlChange(%d, %d, %d) = %#v, want %#v",
					tt.channel, tt.index, tt.value, got, tt.want)
			}
		})
	}
}

func TestEncodeNote(t *testing.T) {
	on := EncodeNote(0, 60, 100, true)
	if on != [3]byte{0x90, 60, 100} {
		t.Errorf("note-on = %#v, want {0x90, 60, 100}", on)
	}

	// Note-off uses the real 0x80 status, not a zero-velocity note-on.
	off := EncodeNote(0, 60, 0, false)
	if off != [3]byte{0x80, 60, 0} {
		t.Errorf("note-off = %#v, want {0x80, 60, 0}", off)
	}

	ch := EncodeNote(9, 36, 127, true)
	if ch[0] != 0x99 {
		t.Errorf("note-on channel 9 status = %#x, want 0x99", ch[0])
	}
}

func TestNewControlUpdate(t *testing.T) {
	before := time.Now()
	u, err := NewControlUpdate(7, 64)
	if err != nil {
		t.Fatalf("NewControlUpdate() error = %v", err)
	}
	if u.Index != 7 || u.Value != 64 {
		t.Errorf("update = %v, want index 7 value 64", u)
	}
	if u.Timestamp.Before(before) {
		t.Error("timestamp not set at construction")
	}

	if _, err := NewControlUpdate(MaxControlIndex, 0); !errors.Is(err, ErrControlRange) {
		t.Errorf("out-of-range index error = %v, want ErrControlRange", err)
	}
}

func TestControlUpdate_Age(t *testing.T) {
	u := ControlUpdate{Index: 1, Value: 2, Timestamp: time.Now().Add(-10 * time.Millisecond)}
	if age := u.Age(); age < 10*time.Millisecond {
		t.Errorf("Age() = %v, want >= 10ms", age)
	}
}

func TestControlUpdate_String(t *testing.T) {
	u := ControlUpdate{Index: 5, Value: 100, Timestamp: time.Now()}
	s := u.String()
	if !strings.Contains(s, "CC:5") || !strings.Contains(s, "Value:100") {
		t.Errorf("String() = %q, want CC and Value fields", s)
	}
}
