// Package tracker records which notes are currently sounding, per channel
// and per device, so the engine can synthesize releases for notes whose
// note-off will never arrive because the source device disconnected.
package tracker

import (
	"sort"
	"sync"

	"github.com/d-buckner/humidi/sdk/contracts"
)

// HeldNote is one sounding note owed a release.
type HeldNote struct {
	Channel contracts.Channel
	Note    uint8
}

type noteSet map[uint8]struct{}

type channelNotes map[contracts.Channel]noteSet

// Tracker maintains two parallel views of sounding notes: a global
// cross-device view per channel, and a per-device view used to scope
// disconnect cleanup to the disconnecting device's own notes. Empty inner
// sets and device entries are pruned eagerly, so absence of a key means no
// notes are sounding there.
type Tracker struct {
	mu       sync.Mutex
	global   channelNotes
	byDevice map[string]channelNotes
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{
		global:   make(channelNotes),
		byDevice: make(map[string]channelNotes),
	}
}

// NoteOn records a sounding note. A non-empty deviceID additionally records
// the note under that device for disconnect cleanup.
func (t *Tracker) NoteOn(channel contracts.Channel, note uint8, deviceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	addNote(t.global, channel, note)
	if deviceID != "" {
		perDevice, ok := t.byDevice[deviceID]
		if !ok {
			perDevice = make(channelNotes)
			t.byDevice[deviceID] = perDevice
		}
		addNote(perDevice, channel, note)
	}
}

// NoteOff removes a sounding note from the global view and, when deviceID is
// non-empty, from that device's view. Releasing a note that was never
// recorded is a no-op.
func (t *Tracker) NoteOff(channel contracts.Channel, note uint8, deviceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	removeNote(t.global, channel, note)
	if deviceID == "" {
		return
	}
	if perDevice, ok := t.byDevice[deviceID]; ok {
		removeNote(perDevice, channel, note)
		if len(perDevice) == 0 {
			delete(t.byDevice, deviceID)
		}
	}
}

// ReleaseDevice discards everything recorded under deviceID and returns the
// notes that were still sounding there, ordered by channel then note so
// synthetic releases are deterministic. Only the device's own notes leave
// the global view; a second call for the same device returns nothing.
func (t *Tracker) ReleaseDevice(deviceID string) []HeldNote {
	t.mu.Lock()
	defer t.mu.Unlock()

	perDevice, ok := t.byDevice[deviceID]
	if !ok {
		return nil
	}
	delete(t.byDevice, deviceID)

	var held []HeldNote
	for channel, notes := range perDevice {
		for note := range notes {
			held = append(held, HeldNote{Channel: channel, Note: note})
			removeNote(t.global, channel, note)
		}
	}
	sort.Slice(held, func(i, j int) bool {
		if held[i].Channel != held[j].Channel {
			return held[i].Channel < held[j].Channel
		}
		return held[i].Note < held[j].Note
	})
	return held
}

// ActiveNotes returns the globally sounding notes on one channel in
// ascending order, or nil when none are sounding.
func (t *Tracker) ActiveNotes(channel contracts.Channel) []uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.global[channel]
	if !ok {
		return nil
	}
	notes := make([]uint8, 0, len(set))
	for note := range set {
		notes = append(notes, note)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i] < notes[j] })
	return notes
}

// Reset discards all tracked state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.global = make(channelNotes)
	t.byDevice = make(map[string]channelNotes)
}

func addNote(m channelNotes, channel contracts.Channel, note uint8) {
	set, ok := m[channel]
	if !ok {
		set = make(noteSet)
		m[channel] = set
	}
	set[note] = struct{}{}
}

func removeNote(m channelNotes, channel contracts.Channel, note uint8) {
	set, ok := m[channel]
	if !ok {
		return
	}
	delete(set, note)
	if len(set) == 0 {
		delete(m, channel)
	}
}
