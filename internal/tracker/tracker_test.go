package tracker

import (
	"testing"
)

func TestNoteLifecycle(t *testing.T) {
	tr := New()

	tr.NoteOn(0, 60, "dev-a")
	tr.NoteOn(0, 64, "dev-a")
	tr.NoteOn(9, 36, "dev-a")

	notes := tr.ActiveNotes(0)
	if len(notes) != 2 || notes[0] != 60 || notes[1] != 64 {
		t.Fatalf("ActiveNotes(0) = %v, want [60 64]", notes)
	}

	tr.NoteOff(0, 60, "dev-a")
	notes = tr.ActiveNotes(0)
	if len(notes) != 1 || notes[0] != 64 {
		t.Fatalf("ActiveNotes(0) = %v after release, want [64]", notes)
	}

	if notes := tr.ActiveNotes(5); notes != nil {
		t.Fatalf("ActiveNotes(5) = %v for an untouched channel, want nil", notes)
	}
}

func TestNoteOffWithoutNoteOn(t *testing.T) {
	tr := New()
	tr.NoteOff(0, 60, "dev-a")
	tr.NoteOff(0, 60, "")

	if notes := tr.ActiveNotes(0); notes != nil {
		t.Fatalf("ActiveNotes(0) = %v, want nil", notes)
	}
}

func TestReleaseDevice(t *testing.T) {
	tr := New()
	tr.NoteOn(1, 62, "dev-a")
	tr.NoteOn(0, 60, "dev-a")
	tr.NoteOn(0, 59, "dev-a")

	held := tr.ReleaseDevice("dev-a")
	want := []HeldNote{
		{Channel: 0, Note: 59},
		{Channel: 0, Note: 60},
		{Channel: 1, Note: 62},
	}
	if len(held) != len(want) {
		t.Fatalf("ReleaseDevice = %v, want %v", held, want)
	}
	for i := range want {
		if held[i] != want[i] {
			t.Fatalf("ReleaseDevice = %v, want %v", held, want)
		}
	}

	if notes := tr.ActiveNotes(0); notes != nil {
		t.Fatalf("ActiveNotes(0) = %v after release, want nil", notes)
	}
}

func TestReleaseDeviceIsIdempotent(t *testing.T) {
	tr := New()
	tr.NoteOn(0, 60, "dev-a")

	if held := tr.ReleaseDevice("dev-a"); len(held) != 1 {
		t.Fatalf("first release returned %v, want one note", held)
	}
	if held := tr.ReleaseDevice("dev-a"); held != nil {
		t.Fatalf("second release returned %v, want nil", held)
	}
	if held := tr.ReleaseDevice("never-seen"); held != nil {
		t.Fatalf("release of unknown device returned %v, want nil", held)
	}
}

func TestReleaseDeviceScopedToOwnNotes(t *testing.T) {
	tr := New()
	tr.NoteOn(0, 60, "dev-a")
	tr.NoteOn(0, 60, "dev-b")
	tr.NoteOn(2, 40, "dev-b")

	held := tr.ReleaseDevice("dev-a")
	if len(held) != 1 || held[0] != (HeldNote{Channel: 0, Note: 60}) {
		t.Fatalf("ReleaseDevice(dev-a) = %v, want [{0 60}]", held)
	}

	// dev-b's own recorded notes are untouched and released on its own
	// disconnect, not dev-a's.
	held = tr.ReleaseDevice("dev-b")
	want := []HeldNote{{Channel: 0, Note: 60}, {Channel: 2, Note: 40}}
	if len(held) != len(want) {
		t.Fatalf("ReleaseDevice(dev-b) = %v, want %v", held, want)
	}
	for i := range want {
		if held[i] != want[i] {
			t.Fatalf("ReleaseDevice(dev-b) = %v, want %v", held, want)
		}
	}
}

func TestDeviceEntryPrunedByNoteOff(t *testing.T) {
	tr := New()
	tr.NoteOn(0, 60, "dev-a")
	tr.NoteOff(0, 60, "dev-a")

	// The device entry is pruned once empty, so a disconnect finds nothing.
	if held := tr.ReleaseDevice("dev-a"); held != nil {
		t.Fatalf("ReleaseDevice = %v after all notes released, want nil", held)
	}
}

func TestUntrackedDeviceNotesAreGlobalOnly(t *testing.T) {
	tr := New()
	tr.NoteOn(0, 60, "")

	if notes := tr.ActiveNotes(0); len(notes) != 1 || notes[0] != 60 {
		t.Fatalf("ActiveNotes(0) = %v, want [60]", notes)
	}
	if held := tr.ReleaseDevice(""); held != nil {
		t.Fatalf("ReleaseDevice(\"\") = %v, want nil", held)
	}
}

func TestReset(t *testing.T) {
	tr := New()
	tr.NoteOn(0, 60, "dev-a")
	tr.Reset()

	if notes := tr.ActiveNotes(0); notes != nil {
		t.Fatalf("ActiveNotes(0) = %v after reset, want nil", notes)
	}
	if held := tr.ReleaseDevice("dev-a"); held != nil {
		t.Fatalf("ReleaseDevice = %v after reset, want nil", held)
	}
}
