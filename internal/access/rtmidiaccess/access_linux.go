//go:build linux && cgo
// +build linux,cgo

// Package rtmidiaccess implements the device-access collaborator over the
// rtmidi (ALSA) driver from gitlab.com/gomidi/midi/v2.
package rtmidiaccess

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/d-buckner/humidi/sdk/contracts"
)

// Error definitions for rtmidi connection and handling issues.
var (
	ErrNotRequested  = errors.New("midi access has not been requested")
	ErrUnknownDevice = errors.New("unknown MIDI device")
)

// pollInterval is how often the backend rescans the host's input ports to
// detect hot-plug and hot-unplug.
const pollInterval = time.Second

// boundPort is one open input port with its listener stop function and the
// engine callback its raw bytes are routed to.
type boundPort struct {
	in   drivers.In
	stop func()
	info contracts.DeviceInfo

	mu sync.Mutex
	fn contracts.RawMessageFunc
}

func (p *boundPort) deliver(data []byte) {
	p.mu.Lock()
	fn := p.fn
	p.mu.Unlock()
	if fn != nil {
		fn(data)
	}
}

func (p *boundPort) bind(fn contracts.RawMessageFunc) {
	p.mu.Lock()
	p.fn = fn
	p.mu.Unlock()
}

// Access manages rtmidi input ports and watches for device changes.
type Access struct {
	logger contracts.Logger

	mu           sync.Mutex
	drv          *rtmididrv.Driver
	granted      bool
	ports        map[string]*boundPort
	connectivity contracts.ConnectivityFunc
	stopPoll     chan struct{}
	stopOnce     sync.Once
}

// NewAccess creates the rtmidi device-access backend.
func NewAccess(options *contracts.ClientOptions) (contracts.MIDIAccess, error) {
	options.Logger.Info("rtmidi access backend created")
	return &Access{
		logger: options.Logger,
		ports:  make(map[string]*boundPort),
	}, nil
}

// Request initializes the rtmidi driver, opens every available input port,
// and starts the hot-plug watcher.
func (a *Access) Request() ([]contracts.DeviceInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.granted {
		return a.deviceListLocked(), nil
	}

	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrAccessDenied, err)
	}
	a.drv = drv

	ins, err := drv.Ins()
	if err != nil {
		_ = drv.Close()
		a.drv = nil
		return nil, fmt.Errorf("%w: listing inputs: %v", contracts.ErrAccessDenied, err)
	}

	for _, in := range ins {
		if err := a.openPortLocked(in); err != nil {
			a.logger.Warn("failed to open MIDI input",
				a.logger.Field().String("device", in.String()),
				a.logger.Field().Error("error", err))
		}
	}

	a.granted = true
	a.stopPoll = make(chan struct{})
	go a.watch(a.stopPoll)

	return a.deviceListLocked(), nil
}

// BindInput routes the raw message stream of the identified device to fn.
func (a *Access) BindInput(deviceID string, fn contracts.RawMessageFunc) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.granted {
		return ErrNotRequested
	}
	port, ok := a.ports[deviceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, deviceID)
	}
	port.bind(fn)
	return nil
}

// OnConnectivityChange registers the callback notified on device changes.
func (a *Access) OnConnectivityChange(fn contracts.ConnectivityFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connectivity = fn
}

// HasPermission reports whether the driver has been initialized. rtmidi has
// no user-facing permission prompt, so a successful Request is the grant.
func (a *Access) HasPermission() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.granted
}

// Stop closes every open port and shuts the driver down.
func (a *Access) Stop() error {
	var err error
	a.stopOnce.Do(func() {
		a.mu.Lock()
		defer a.mu.Unlock()

		if a.stopPoll != nil {
			close(a.stopPoll)
			a.stopPoll = nil
		}
		for id, port := range a.ports {
			port.stop()
			_ = port.in.Close()
			delete(a.ports, id)
		}
		if a.drv != nil {
			err = a.drv.Close()
			a.drv = nil
		}
		a.granted = false
	})
	return err
}

// openPortLocked opens one input port and starts its raw-byte listener.
// The caller holds a.mu.
func (a *Access) openPortLocked(in drivers.In) error {
	if err := in.Open(); err != nil {
		return fmt.Errorf("open %q: %w", in.String(), err)
	}

	port := &boundPort{
		in: in,
		info: contracts.DeviceInfo{
			ID:   in.String(),
			Name: in.String(),
		},
	}

	stop, err := in.Listen(func(data []byte, milliseconds int32) {
		port.deliver(data)
	}, drivers.ListenConfig{})
	if err != nil {
		_ = in.Close()
		return fmt.Errorf("listen %q: %w", in.String(), err)
	}

	port.stop = stop
	a.ports[port.info.ID] = port
	return nil
}

func (a *Access) deviceListLocked() []contracts.DeviceInfo {
	devices := make([]contracts.DeviceInfo, 0, len(a.ports))
	for _, port := range a.ports {
		devices = append(devices, port.info)
	}
	return devices
}

// watch rescans the input ports on an interval and reports the diff through
// the connectivity callback.
func (a *Access) watch(stop <-chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.scan()
		}
	}
}

func (a *Access) scan() {
	a.mu.Lock()
	if a.drv == nil {
		a.mu.Unlock()
		return
	}
	ins, err := a.drv.Ins()
	if err != nil {
		a.mu.Unlock()
		a.logger.Warn("failed to list MIDI inputs", a.logger.Field().Error("error", err))
		return
	}

	seen := make(map[string]bool, len(ins))
	var connected []contracts.DeviceInfo
	var disconnected []contracts.DeviceInfo

	for _, in := range ins {
		id := in.String()
		seen[id] = true
		if _, ok := a.ports[id]; ok {
			continue
		}
		if err := a.openPortLocked(in); err != nil {
			a.logger.Warn("failed to open new MIDI input",
				a.logger.Field().String("device", id),
				a.logger.Field().Error("error", err))
			continue
		}
		connected = append(connected, a.ports[id].info)
	}

	for id, port := range a.ports {
		if seen[id] {
			continue
		}
		port.stop()
		_ = port.in.Close()
		delete(a.ports, id)
		disconnected = append(disconnected, port.info)
	}

	connectivity := a.connectivity
	a.mu.Unlock()

	if connectivity == nil {
		return
	}
	for _, dev := range connected {
		connectivity(dev, contracts.StateConnected)
	}
	for _, dev := range disconnected {
		connectivity(dev, contracts.StateDisconnected)
	}
}
