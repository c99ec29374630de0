package humidi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/d-buckner/humidi/internal/access/coremidiaccess"
	"github.com/d-buckner/humidi/internal/access/rtmidiaccess"
	"github.com/d-buckner/humidi/internal/access/winmmaccess"
	"github.com/d-buckner/humidi/sdk/contracts"
)

// ErrUnsupportedOS is returned when no device-access backend exists for the
// current operating system.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// accessInitializers maps OS names to the corresponding device-access
// backend initializer.
var accessInitializers = map[string]func(*contracts.ClientOptions) (contracts.MIDIAccess, error){
	"darwin":  coremidiaccess.NewAccess, // macOS CoreMIDI backend.
	"windows": winmmaccess.NewAccess,    // Windows winmm backend.
	"linux":   rtmidiaccess.NewAccess,   // rtmidi (ALSA) backend.
}

// newPlatformAccess initializes the device-access backend for the current
// operating system, returning ErrUnsupportedOS when there is none.
func newPlatformAccess(opts *contracts.ClientOptions) (contracts.MIDIAccess, error) {
	if initializer, exists := accessInitializers[runtime.GOOS]; exists {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}
