//go:build darwin
// +build darwin

// Package coremidiaccess implements the device-access collaborator over
// CoreMIDI on macOS.
package coremidiaccess

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/youpy/go-coremidi"

	"github.com/d-buckner/humidi/sdk/contracts"
)

// Error definitions for CoreMIDI connection and handling issues.
var (
	ErrNotRequested    = errors.New("midi access has not been requested")
	ErrUnknownDevice   = errors.New("unknown MIDI device")
	ErrCreateInputPort = errors.New("error creating input port")
)

// pollInterval is how often sources are rescanned for hot-plug detection.
const pollInterval = time.Second

// boundSource is one connected CoreMIDI source and the engine callback its
// packets are routed to.
type boundSource struct {
	conn interface{ Disconnect() }
	info contracts.DeviceInfo

	mu sync.Mutex
	fn contracts.RawMessageFunc
}

func (s *boundSource) deliver(data []byte) {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn != nil {
		fn(data)
	}
}

func (s *boundSource) bind(fn contracts.RawMessageFunc) {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
}

// Access manages CoreMIDI source connections and watches for device changes.
type Access struct {
	logger     contracts.Logger
	clientName string

	mu           sync.Mutex
	client       coremidi.Client
	inputPort    coremidi.InputPort
	granted      bool
	sources      map[string]*boundSource
	connectivity contracts.ConnectivityFunc
	stopPoll     chan struct{}
	stopOnce     sync.Once
}

// NewAccess creates the CoreMIDI device-access backend.
func NewAccess(options *contracts.ClientOptions) (contracts.MIDIAccess, error) {
	client, err := coremidi.NewClient(options.ClientName)
	if err != nil {
		return nil, err
	}
	options.Logger.Info("CoreMIDI client successfully created")

	return &Access{
		logger:     options.Logger,
		clientName: options.ClientName,
		client:     client,
		sources:    make(map[string]*boundSource),
	}, nil
}

// Request creates the shared input port, connects every available source,
// and starts the hot-plug watcher.
func (a *Access) Request() ([]contracts.DeviceInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.granted {
		return a.deviceListLocked(), nil
	}

	inputPort, err := coremidi.NewInputPort(a.client, "Input Port", a.handlePacket)
	if err != nil {
		a.logger.Error(ErrCreateInputPort.Error())
		return nil, fmt.Errorf("%w: %v", contracts.ErrAccessDenied, err)
	}
	a.inputPort = inputPort

	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("%w: listing sources: %v", contracts.ErrAccessDenied, err)
	}
	for _, source := range sources {
		a.connectSourceLocked(source)
	}

	a.granted = true
	a.stopPoll = make(chan struct{})
	go a.watch(a.stopPoll)

	return a.deviceListLocked(), nil
}

// BindInput routes the raw packet stream of the identified source to fn.
func (a *Access) BindInput(deviceID string, fn contracts.RawMessageFunc) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.granted {
		return ErrNotRequested
	}
	source, ok := a.sources[deviceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, deviceID)
	}
	source.bind(fn)
	return nil
}

// OnConnectivityChange registers the callback notified on device changes.
func (a *Access) OnConnectivityChange(fn contracts.ConnectivityFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connectivity = fn
}

// HasPermission reports whether source connections are established. CoreMIDI
// grants access implicitly, so a successful Request is the grant.
func (a *Access) HasPermission() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.granted
}

// Stop disconnects every source and halts the watcher.
func (a *Access) Stop() error {
	a.stopOnce.Do(func() {
		a.mu.Lock()
		defer a.mu.Unlock()

		if a.stopPoll != nil {
			close(a.stopPoll)
			a.stopPoll = nil
		}
		for id, source := range a.sources {
			if source.conn != nil {
				source.conn.Disconnect()
			}
			delete(a.sources, id)
		}
		a.granted = false
	})
	return nil
}

// handlePacket is the shared CoreMIDI input callback; it routes each packet
// to the source it arrived on.
func (a *Access) handlePacket(source coremidi.Source, packet coremidi.Packet) {
	id := sourceID(source)

	a.mu.Lock()
	bound := a.sources[id]
	a.mu.Unlock()

	if bound == nil || len(packet.Data) == 0 {
		return
	}
	bound.deliver(packet.Data)
}

// connectSourceLocked connects one source to the shared input port. The
// caller holds a.mu.
func (a *Access) connectSourceLocked(source coremidi.Source) {
	id := sourceID(source)
	if _, ok := a.sources[id]; ok {
		return
	}

	conn, err := a.inputPort.Connect(source)
	if err != nil {
		a.logger.Warn("failed to connect MIDI source",
			a.logger.Field().String("device", id),
			a.logger.Field().Error("error", err))
		return
	}

	entity := source.Entity()
	a.sources[id] = &boundSource{
		conn: conn,
		info: contracts.DeviceInfo{
			ID:           id,
			Name:         source.Name(),
			Manufacturer: entity.Manufacturer(),
		},
	}
}

func (a *Access) deviceListLocked() []contracts.DeviceInfo {
	devices := make([]contracts.DeviceInfo, 0, len(a.sources))
	for _, source := range a.sources {
		devices = append(devices, source.info)
	}
	return devices
}

// sourceID derives a stable identifier for a CoreMIDI source.
func sourceID(source coremidi.Source) string {
	entity := source.Entity()
	return entity.Name() + "/" + source.Name()
}

// watch rescans sources on an interval and reports the diff through the
// connectivity callback.
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
	sources, err := coremidi.AllSources()
	if err != nil {
		a.logger.Warn("failed to list MIDI sources", a.logger.Field().Error("error", err))
		return
	}

	a.mu.Lock()
	seen := make(map[string]bool, len(sources))
	var connected []contracts.DeviceInfo
	var disconnected []contracts.DeviceInfo

	for _, source := range sources {
		id := sourceID(source)
		seen[id] = true
		if _, ok := a.sources[id]; ok {
			continue
		}
		a.connectSourceLocked(source)
		if bound, ok := a.sources[id]; ok {
			connected = append(connected, bound.info)
		}
	}

	for id, bound := range a.sources {
		if seen[id] {
			continue
		}
		if bound.conn != nil {
			bound.conn.Disconnect()
		}
		delete(a.sources, id)
		disconnected = append(disconnected, bound.info)
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
