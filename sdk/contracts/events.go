package contracts

// Channel identifies one of the 16 logical MIDI channels (0-15).
// ChannelAll is the reserved wildcard scope meaning "all channels"; it is
// valid both as a subscription scope and as an emission target.
type Channel int

// ChannelAll is the wildcard channel sentinel.
const ChannelAll Channel = -1

// Valid reports whether c is a concrete channel or the wildcard.
func (c Channel) Valid() bool {
	return c == ChannelAll || (c >= 0 && c <= 15)
}

// EventType identifies the kind of an emitted application event.
type EventType int

const (
	// EventNoteOn is emitted for a sounding note with velocity > 0.
	EventNoteOn EventType = iota
	// EventNoteOff is emitted when a note is released, including synthetic
	// releases generated when an input device disconnects.
	EventNoteOff
	// EventPitchBend is emitted for pitch wheel movement.
	EventPitchBend
	// EventSustainOn is emitted when the sustain pedal value crosses into [64, 127].
	EventSustainOn
	// EventSustainOff is emitted when the sustain pedal value is in [0, 63].
	EventSustainOff
	// EventInputConnected is emitted when an input device appears.
	EventInputConnected
	// EventInputDisconnected is emitted when an input device disappears.
	EventInputDisconnected
)

// Event is the payload delivered to subscribed handlers. Each event type has
// its own concrete struct so a handler declared for one type can assert to a
// statically known shape.
type Event interface {
	EventType() EventType
}

// Handler consumes emitted events. Handlers are compared by function
// identity: subscribing the same function twice for the same scope has no
// additional effect.
type Handler func(Event)

// NoteOnEvent carries a sounding note. Velocity is always in [1, 127]; a
// wire-level note-on with velocity 0 is delivered as a NoteOffEvent instead.
type NoteOnEvent struct {
	Channel  Channel
	Note     uint8 // 0-127
	Velocity uint8 // 1-127
}

// NoteOffEvent carries a released note.
type NoteOffEvent struct {
	Channel Channel
	Note    uint8 // 0-127
}

// PitchBendEvent carries a normalized pitch wheel position.
// Value is in [-1.0, +1.0) with 0.0 at center (raw 8192).
type PitchBendEvent struct {
	Channel Channel
	Value   float64
}

// SustainOnEvent carries a sustain pedal press (raw value >= 64).
type SustainOnEvent struct {
	Channel Channel
	Value   uint8 // 64-127
}

// SustainOffEvent carries a sustain pedal release (raw value < 64).
type SustainOffEvent struct {
	Channel Channel
	Value   uint8 // 0-63
}

// InputConnectedEvent announces a device that just connected.
type InputConnectedEvent struct {
	Device DeviceInfo
}

// InputDisconnectedEvent announces a device that just disconnected. Any notes
// it still held have already been released via NoteOffEvent emissions.
type InputDisconnectedEvent struct {
	Device DeviceInfo
}

func (NoteOnEvent) EventType() EventType            { return EventNoteOn }
func (NoteOffEvent) EventType() EventType           { return EventNoteOff }
func (PitchBendEvent) EventType() EventType         { return EventPitchBend }
func (SustainOnEvent) EventType() EventType         { return EventSustainOn }
func (SustainOffEvent) EventType() EventType        { return EventSustainOff }
func (InputConnectedEvent) EventType() EventType    { return EventInputConnected }
func (InputDisconnectedEvent) EventType() EventType { return EventInputDisconnected }
