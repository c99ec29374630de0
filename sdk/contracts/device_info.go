package contracts

// ConnectionState describes whether a device is currently reachable.
type ConnectionState int

const (
	// StateConnected means the device is present and its stream is bound.
	StateConnected ConnectionState = iota
	// StateDisconnected means the device was seen before but is gone now.
	StateDisconnected
)

// String returns the lowercase state name.
func (s ConnectionState) String() string {
	if s == StateConnected {
		return "connected"
	}
	return "disconnected"
}

// DeviceInfo identifies a physical MIDI input device.
type DeviceInfo struct {
	ID           string // Stable per physical device.
	Name         string // Device name.
	Manufacturer string // Device manufacturer.
}
