package protocol

import "github.com/d-buckner/humidi/sdk/contracts"

// pitchBendCenter is the raw 14-bit value of a centered pitch wheel.
const pitchBendCenter = 8192

// Message is one decoded channel-voice message. Kind selects which payload
// fields are meaningful.
type Message struct {
	Kind    MessageKind
	Channel contracts.Channel

	Note     uint8 // KindNoteOn, KindNoteOff
	Velocity uint8 // KindNoteOn

	Controller      ControllerKind // KindControlChange
	ControllerValue uint8          // KindControlChange

	Bend float64 // KindPitchBend, normalized to [-1.0, +1.0)
}

// Decode resolves 1-3 raw wire bytes into a Message. The second return is
// false when the bytes carry no decodable message: an unsupported status
// byte, an empty packet, or a packet shorter than its kind requires. None of
// these are errors; the engine drops them silently.
//
// A note-on with velocity 0 is normalized to a note-off here, so callers
// never observe NoteOn with a zero velocity.
func Decode(data []byte) (Message, bool) {
	if len(data) == 0 {
		return Message{}, false
	}

	kind, channel, ok := lookupStatus(data[0])
	if !ok {
		return Message{}, false
	}

	msg := Message{Kind: kind, Channel: channel}

	switch kind {
	case KindNoteOff:
		if len(data) < 2 {
			return Message{}, false
		}
		// Release velocity (data2) is ignored when present.
		msg.Note = data[1] & 0x7F

	case KindNoteOn:
		if len(data) < 3 {
			return Message{}, false
		}
		msg.Note = data[1] & 0x7F
		msg.Velocity = data[2] & 0x7F
		if msg.Velocity == 0 {
			// Many controllers send note-on velocity 0 instead of note-off.
			msg.Kind = KindNoteOff
		}

	case KindControlChange:
		if len(data) < 3 {
			return Message{}, false
		}
		msg.Controller = lookupController(data[1] & 0x7F)
		msg.ControllerValue = data[2] & 0x7F

	case KindPitchBend:
		if len(data) < 3 {
			return Message{}, false
		}
		// data1 is the LSB, data2 the MSB of the 14-bit wheel position.
		raw := uint16(data[2]&0x7F)<<7 | uint16(data[1]&0x7F)
		msg.Bend = (float64(raw) - pitchBendCenter) / pitchBendCenter
	}

	return msg, true
}
