//go:build !windows
// +build !windows

package winmmaccess

import (
	"fmt"

	"github.com/d-buckner/humidi/sdk/contracts"
)

// DummyAccess stands in for the winmm backend on non-Windows systems.
type DummyAccess struct {
	logger contracts.Logger
}

// NewAccess returns a backend whose operations all report unavailability.
func NewAccess(options *contracts.ClientOptions) (contracts.MIDIAccess, error) {
	options.Logger.Info("using dummy winmm access backend for non-Windows system")
	return &DummyAccess{logger: options.Logger}, nil
}

func (a *DummyAccess) Request() ([]contracts.DeviceInfo, error) {
	a.logger.Warn("Request called on dummy winmm access backend")
	return nil, fmt.Errorf("%w: winmm is not available on this platform", contracts.ErrAccessDenied)
}

func (a *DummyAccess) BindInput(deviceID string, fn contracts.RawMessageFunc) error {
	return fmt.Errorf("winmm is not available on this platform")
}

func (a *DummyAccess) OnConnectivityChange(fn contracts.ConnectivityFunc) {}

func (a *DummyAccess) HasPermission() bool { return false }

func (a *DummyAccess) Stop() error { return nil }
