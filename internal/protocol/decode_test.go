package protocol

import (
	"testing"

	"github.com/d-buckner/humidi/sdk/contracts"
)

func TestDecodeNoteOn(t *testing.T) {
	for status := 0x90; status <= 0x9F; status++ {
		msg, ok := Decode([]byte{byte(status), 60, 100})
		if !ok {
			t.Fatalf("status 0x%X: expected a decoded message", status)
		}
		if msg.Kind != KindNoteOn {
			t.Fatalf("status 0x%X: kind = %v, want note_on", status, msg.Kind)
		}
		if want := contracts.Channel(status - 0x90); msg.Channel != want {
			t.Fatalf("status 0x%X: channel = %d, want %d", status, msg.Channel, want)
		}
		if msg.Note != 60 || msg.Velocity != 100 {
			t.Fatalf("status 0x%X: note/velocity = %d/%d, want 60/100", status, msg.Note, msg.Velocity)
		}
	}
}

func TestDecodeNoteOnZeroVelocityIsNoteOff(t *testing.T) {
	for status := 0x90; status <= 0x9F; status++ {
		msg, ok := Decode([]byte{byte(status), 72, 0})
		if !ok {
			t.Fatalf("status 0x%X: expected a decoded message", status)
		}
		if msg.Kind != KindNoteOff {
			t.Fatalf("status 0x%X: kind = %v, want note_off for velocity 0", status, msg.Kind)
		}
		if msg.Note != 72 {
			t.Fatalf("status 0x%X: note = %d, want 72", status, msg.Note)
		}
	}
}

func TestDecodeNoteOff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"with release velocity", []byte{0x80, 64, 40}},
		{"zero release velocity", []byte{0x85, 64, 0}},
		{"no release velocity", []byte{0x8F, 64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := Decode(tt.data)
			if !ok {
				t.Fatal("expected a decoded message")
			}
			if msg.Kind != KindNoteOff {
				t.Fatalf("kind = %v, want note_off", msg.Kind)
			}
			if want := contracts.Channel(tt.data[0] - 0x80); msg.Channel != want {
				t.Fatalf("channel = %d, want %d", msg.Channel, want)
			}
			if msg.Note != 64 {
				t.Fatalf("note = %d, want 64", msg.Note)
			}
		})
	}
}

func TestDecodePitchBend(t *testing.T) {
	tests := []struct {
		name string
		raw  uint16
		want float64
	}{
		{"minimum", 0, -1.0},
		{"center", 8192, 0.0},
		{"maximum", 16383, (16383.0 - 8192.0) / 8192.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte{0xE3, byte(tt.raw & 0x7F), byte(tt.raw >> 7)}
			msg, ok := Decode(data)
			if !ok {
				t.Fatal("expected a decoded message")
			}
			if msg.Kind != KindPitchBend {
				t.Fatalf("kind = %v, want pitch_bend", msg.Kind)
			}
			if msg.Channel != 3 {
				t.Fatalf("channel = %d, want 3", msg.Channel)
			}
			if msg.Bend != tt.want {
				t.Fatalf("bend = %v, want %v", msg.Bend, tt.want)
			}
		})
	}
}

func TestDecodeControlChange(t *testing.T) {
	msg, ok := Decode([]byte{0xB2, 64, 100})
	if !ok {
		t.Fatal("expected a decoded message")
	}
	if msg.Kind != KindControlChange {
		t.Fatalf("kind = %v, want control_change", msg.Kind)
	}
	if msg.Channel != 2 {
		t.Fatalf("channel = %d, want 2", msg.Channel)
	}
	if msg.Controller != ControllerSustain {
		t.Fatalf("controller = %v, want sustain", msg.Controller)
	}
	if msg.ControllerValue != 100 {
		t.Fatalf("value = %d, want 100", msg.ControllerValue)
	}
}

func TestDecodeUnhandledController(t *testing.T) {
	// Modulation wheel (1) is recognized but produces no semantic kind.
	msg, ok := Decode([]byte{0xB0, 1, 127})
	if !ok {
		t.Fatal("expected a decoded message")
	}
	if msg.Controller != ControllerUnhandled {
		t.Fatalf("controller = %v, want unhandled", msg.Controller)
	}
}

func TestDecodeUnsupportedStatus(t *testing.T) {
	unsupported := []byte{
		0x00,       // not a status byte
		0x7F,       // data byte range
		0xA0, 0xAF, // polyphonic aftertouch
		0xC0, 0xCF, // program change
		0xD0, 0xDF, // channel pressure
		0xF0, 0xF8, 0xFF, // system messages
	}
	for _, status := range unsupported {
		if _, ok := Decode([]byte{status, 1, 2}); ok {
			t.Fatalf("status 0x%X: expected silent drop", status)
		}
	}
}

func TestDecodeShortPackets(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"note on without velocity", []byte{0x90, 60}},
		{"note off status only", []byte{0x80}},
		{"pitch bend without msb", []byte{0xE0, 0x10}},
		{"control change without value", []byte{0xB0, 64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Decode(tt.data); ok {
				t.Fatal("expected short packet to be dropped")
			}
		})
	}
}
