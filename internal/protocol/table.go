// Package protocol decodes raw MIDI channel-voice messages against the
// fixed wire grammar: a status byte selecting kind and channel, followed by
// one or two 7-bit data bytes.
package protocol

import "github.com/d-buckner/humidi/sdk/contracts"

// MessageKind is the closed set of channel-voice messages the engine decodes.
type MessageKind int

const (
	KindNoteOff MessageKind = iota
	KindNoteOn
	KindControlChange
	KindPitchBend
)

// String returns the wire-protocol name of the kind.
func (k MessageKind) String() string {
	switch k {
	case KindNoteOff:
		return "note_off"
	case KindNoteOn:
		return "note_on"
	case KindControlChange:
		return "control_change"
	case KindPitchBend:
		return "pitch_bend"
	default:
		return "unknown"
	}
}

// statusRange maps one message kind to its 16-value status byte range,
// one value per channel starting at base.
type statusRange struct {
	base byte
	kind MessageKind
}

// statusTable covers the four supported channel-voice ranges. Status bytes
// outside these ranges (system messages, aftertouch, program change) are
// unsupported and dropped before decoding.
var statusTable = [...]statusRange{
	{base: 0x80, kind: KindNoteOff},       // 128-143
	{base: 0x90, kind: KindNoteOn},        // 144-159
	{base: 0xB0, kind: KindControlChange}, // 176-191
	{base: 0xE0, kind: KindPitchBend},     // 224-239
}

// lookupStatus resolves a status byte to its message kind and channel.
// The second return is false for unsupported status bytes.
func lookupStatus(status byte) (MessageKind, contracts.Channel, bool) {
	for _, r := range statusTable {
		if status >= r.base && status <= r.base+15 {
			return r.kind, contracts.Channel(status - r.base), true
		}
	}
	return 0, 0, false
}
