package registry

import (
	"testing"

	"github.com/d-buckner/humidi/sdk/contracts"
)

func TestChannelScoping(t *testing.T) {
	r := New()
	var onFive, onAll int

	r.On(5, contracts.EventNoteOn, func(contracts.Event) { onFive++ })
	r.On(contracts.ChannelAll, contracts.EventNoteOn, func(contracts.Event) { onAll++ })

	r.Emit(0, contracts.EventNoteOn, contracts.NoteOnEvent{Channel: 0, Note: 60, Velocity: 1})
	if onFive != 0 {
		t.Fatalf("channel-5 handler invoked %d times for a channel-0 emission", onFive)
	}
	if onAll != 1 {
		t.Fatalf("wildcard handler invoked %d times, want 1", onAll)
	}

	r.Emit(5, contracts.EventNoteOn, contracts.NoteOnEvent{Channel: 5, Note: 60, Velocity: 1})
	if onFive != 1 {
		t.Fatalf("channel-5 handler invoked %d times, want 1", onFive)
	}
	if onAll != 2 {
		t.Fatalf("wildcard handler invoked %d times, want 2", onAll)
	}
}

func TestWildcardEmissionReachesOnlyWildcard(t *testing.T) {
	r := New()
	var onZero, onAll int

	r.On(0, contracts.EventNoteOff, func(contracts.Event) { onZero++ })
	r.On(contracts.ChannelAll, contracts.EventNoteOff, func(contracts.Event) { onAll++ })

	r.Emit(contracts.ChannelAll, contracts.EventNoteOff, contracts.NoteOffEvent{Note: 60})
	if onZero != 0 {
		t.Fatalf("channel-0 handler invoked %d times for a wildcard emission", onZero)
	}
	if onAll != 1 {
		t.Fatalf("wildcard handler invoked %d times, want 1 (no double delivery)", onAll)
	}
}

func TestEventTypeScoping(t *testing.T) {
	r := New()
	var noteOns int

	r.On(contracts.ChannelAll, contracts.EventNoteOn, func(contracts.Event) { noteOns++ })

	r.Emit(0, contracts.EventNoteOff, contracts.NoteOffEvent{Note: 60})
	r.Emit(0, contracts.EventPitchBend, contracts.PitchBendEvent{Value: 0.5})
	if noteOns != 0 {
		t.Fatalf("note-on handler invoked %d times for other event types", noteOns)
	}
}

func TestOnIsIdempotent(t *testing.T) {
	r := New()
	var calls int
	handler := func(contracts.Event) { calls++ }

	r.On(1, contracts.EventNoteOn, handler)
	r.On(1, contracts.EventNoteOn, handler)

	r.Emit(1, contracts.EventNoteOn, contracts.NoteOnEvent{Channel: 1, Note: 60, Velocity: 1})
	if calls != 1 {
		t.Fatalf("handler invoked %d times after duplicate subscription, want 1", calls)
	}
}

func TestOff(t *testing.T) {
	r := New()
	var calls int
	handler := func(contracts.Event) { calls++ }

	r.On(1, contracts.EventNoteOn, handler)
	r.Off(1, contracts.EventNoteOn, handler)

	r.Emit(1, contracts.EventNoteOn, contracts.NoteOnEvent{Channel: 1, Note: 60, Velocity: 1})
	if calls != 0 {
		t.Fatalf("handler invoked %d times after unsubscribe, want 0", calls)
	}

	// Removing an absent handler is a no-op, not an error.
	r.Off(1, contracts.EventNoteOn, handler)
	r.Off(9, contracts.EventNoteOff, func(contracts.Event) {})
}

func TestDropChannel(t *testing.T) {
	r := New()
	var onZero, onOne, onAll int

	r.On(0, contracts.EventNoteOn, func(contracts.Event) { onZero++ })
	r.On(1, contracts.EventNoteOn, func(contracts.Event) { onOne++ })
	r.On(contracts.ChannelAll, contracts.EventNoteOn, func(contracts.Event) { onAll++ })

	r.DropChannel(0)

	r.Emit(0, contracts.EventNoteOn, contracts.NoteOnEvent{Channel: 0, Note: 60, Velocity: 1})
	r.Emit(1, contracts.EventNoteOn, contracts.NoteOnEvent{Channel: 1, Note: 60, Velocity: 1})

	if onZero != 0 {
		t.Fatalf("channel-0 handler invoked %d times after DropChannel(0)", onZero)
	}
	if onOne != 1 {
		t.Fatalf("channel-1 handler invoked %d times, want 1", onOne)
	}
	if onAll != 2 {
		t.Fatalf("wildcard handler invoked %d times, want 2", onAll)
	}
}

func TestHandlerOrderWithinScope(t *testing.T) {
	r := New()
	var order []string

	r.On(0, contracts.EventNoteOn, func(contracts.Event) { order = append(order, "first") })
	r.On(0, contracts.EventNoteOn, func(contracts.Event) { order = append(order, "second") })
	r.On(contracts.ChannelAll, contracts.EventNoteOn, func(contracts.Event) { order = append(order, "wildcard") })

	r.Emit(0, contracts.EventNoteOn, contracts.NoteOnEvent{Channel: 0, Note: 60, Velocity: 1})

	want := []string{"first", "second", "wildcard"}
	if len(order) != len(want) {
		t.Fatalf("invocations = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("invocations = %v, want %v", order, want)
		}
	}
}

func TestReset(t *testing.T) {
	r := New()
	var calls int

	r.On(contracts.ChannelAll, contracts.EventNoteOn, func(contracts.Event) { calls++ })
	r.Reset()

	r.Emit(0, contracts.EventNoteOn, contracts.NoteOnEvent{Channel: 0, Note: 60, Velocity: 1})
	if calls != 0 {
		t.Fatalf("handler invoked %d times after reset, want 0", calls)
	}
}
