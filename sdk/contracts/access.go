package contracts

import "errors"

// ErrAccessDenied is returned when the host refuses MIDI access or the user
// declines the permission prompt. It is the only error the engine surfaces
// across its public boundary after construction.
var ErrAccessDenied = errors.New("midi access denied")

// AccessStatus is the tri-state result of the host permission handshake.
type AccessStatus int

const (
	// AccessUnrequested means RequestAccess has not been called yet.
	AccessUnrequested AccessStatus = iota
	// AccessAccepted means the host granted access.
	AccessAccepted
	// AccessDenied means the host refused access; further requests are no-ops.
	AccessDenied
)

// String returns the lowercase status name.
func (s AccessStatus) String() string {
	switch s {
	case AccessAccepted:
		return "accepted"
	case AccessDenied:
		return "denied"
	default:
		return "unrequested"
	}
}

// RawMessageFunc receives the raw bytes of one wire message from a bound
// input device, status byte first.
type RawMessageFunc func(data []byte)

// ConnectivityFunc receives device connect/disconnect notifications.
type ConnectivityFunc func(device DeviceInfo, state ConnectionState)

// MIDIAccess is the host device-access collaborator. Platform backends live
// in internal/access; tests substitute their own implementation via
// WithAccess.
type MIDIAccess interface {
	// Request performs the host permission handshake and enumerates the
	// currently attached input devices. It returns ErrAccessDenied (possibly
	// wrapped) if the host refuses.
	Request() ([]DeviceInfo, error)

	// BindInput routes the raw message stream of the identified device to fn.
	// Binding an unknown device ID is an error; rebinding replaces the
	// previous callback.
	BindInput(deviceID string, fn RawMessageFunc) error

	// OnConnectivityChange registers the single callback notified when a
	// device appears or disappears.
	OnConnectivityChange(fn ConnectivityFunc)

	// HasPermission reports the current grant state without mutating it.
	// It returns false, not an error, when the host has no query facility.
	HasPermission() bool

	// Stop releases host resources and stops all delivery.
	Stop() error
}
