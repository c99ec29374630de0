package humidi

import (
	"sync"

	"github.com/d-buckner/humidi/sdk/contracts"
)

// Input is the application-facing handle for one physical input device. A
// handle is created the first time its device ID is observed and is never
// destroyed: a later disconnect flips its state in place, so references held
// by application code stay valid and queryable.
type Input struct {
	info contracts.DeviceInfo

	mu      sync.Mutex
	state   contracts.ConnectionState
	enabled bool
}

func newInput(info contracts.DeviceInfo) *Input {
	return &Input{info: info, enabled: true}
}

// ID returns the stable device identifier.
func (i *Input) ID() string {
	return i.info.ID
}

// Name returns the device name.
func (i *Input) Name() string {
	return i.info.Name
}

// Manufacturer returns the device manufacturer.
func (i *Input) Manufacturer() string {
	return i.info.Manufacturer
}

// Info returns the device descriptor.
func (i *Input) Info() contracts.DeviceInfo {
	return i.info
}

// State reports whether the device is currently connected.
func (i *Input) State() contracts.ConnectionState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Enable lets this device's messages through its per-device gate. The gate
// is independent of the engine's global gate and defaults to enabled.
func (i *Input) Enable() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.enabled = true
}

// Disable drops this device's messages before decoding. Other devices are
// unaffected.
func (i *Input) Disable() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.enabled = false
}

// IsEnabled reports the per-device gate.
func (i *Input) IsEnabled() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.enabled
}

func (i *Input) setState(state contracts.ConnectionState) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state = state
}
