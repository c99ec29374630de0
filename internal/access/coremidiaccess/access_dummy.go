//go:build !darwin
// +build !darwin

package coremidiaccess

import (
	"fmt"

	"github.com/d-buckner/humidi/sdk/contracts"
)

// DummyAccess stands in for the CoreMIDI backend on non-macOS systems.
type DummyAccess struct {
	logger contracts.Logger
}

// NewAccess returns a backend whose operations all report unavailability.
func NewAccess(options *contracts.ClientOptions) (contracts.MIDIAccess, error) {
	options.Logger.Info("using dummy CoreMIDI access backend for non-macOS system")
	return &DummyAccess{logger: options.Logger}, nil
}

func (a *DummyAccess) Request() ([]contracts.DeviceInfo, error) {
	a.logger.Warn("Request called on dummy CoreMIDI access backend")
	return nil, fmt.Errorf("%w: CoreMIDI is not available on this platform", contracts.ErrAccessDenied)
}

func (a *DummyAccess) BindInput(deviceID string, fn contracts.RawMessageFunc) error {
	return fmt.Errorf("CoreMIDI is not available on this platform")
}

func (a *DummyAccess) OnConnectivityChange(fn contracts.ConnectivityFunc) {}

func (a *DummyAccess) HasPermission() bool { return false }

func (a *DummyAccess) Stop() error { return nil }
