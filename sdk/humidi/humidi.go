// Package humidi exposes the MIDI input engine: it requests device access
// from the host, decodes each device's raw message stream into typed events,
// dispatches them to channel-scoped subscribers, and releases notes left
// sounding by devices that disconnect mid-performance.
package humidi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/d-buckner/humidi/internal/protocol"
	"github.com/d-buckner/humidi/internal/registry"
	"github.com/d-buckner/humidi/internal/tracker"
	"github.com/d-buckner/humidi/sdk/contracts"
)

// Documented fallbacks for descriptor fields the host leaves empty.
const (
	fallbackID           = "unknown"
	fallbackName         = "Unknown Device"
	fallbackManufacturer = "Unknown"
)

// HuMIDI is one engine instance. It owns the subscription registry, the
// note-liveness tracker, and the device descriptor map; all three are only
// mutated through the engine's serialized entry points, so independent
// engines (for example, one per test) never share state.
type HuMIDI struct {
	logger   contracts.Logger
	access   contracts.MIDIAccess
	registry *registry.Registry
	tracker  *tracker.Tracker

	mu      sync.Mutex
	inputs  map[string]*Input
	order   []string
	enabled bool
	status  contracts.AccessStatus
}

// New creates an engine with the specified options. Without options it logs
// through zap and talks to the platform MIDI backend for the current OS.
func New(opts ...contracts.Option) (*HuMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &HuMIDI{
		logger:   options.Logger,
		access:   options.Access,
		registry: registry.New(),
		tracker:  tracker.New(),
		inputs:   make(map[string]*Input),
		enabled:  true,
	}, nil
}

// RequestAccess performs the host permission handshake, enumerates the
// attached input devices, and binds their message streams to the engine.
// The handshake settles exactly once: after it has been accepted or denied,
// further calls are no-ops returning nil. A refusal is reported as
// contracts.ErrAccessDenied (possibly wrapped) and settles the status to
// denied.
func (h *HuMIDI) RequestAccess() error {
	h.mu.Lock()
	if h.status != contracts.AccessUnrequested {
		h.mu.Unlock()
		return nil
	}
	access := h.access
	h.mu.Unlock()

	devices, err := access.Request()
	if err != nil {
		h.mu.Lock()
		h.status = contracts.AccessDenied
		h.mu.Unlock()
		h.logger.Warn("MIDI access denied", h.logger.Field().Error("error", err))
		if errors.Is(err, contracts.ErrAccessDenied) {
			return err
		}
		return fmt.Errorf("%w: %v", contracts.ErrAccessDenied, err)
	}

	h.mu.Lock()
	h.status = contracts.AccessAccepted
	for _, dev := range devices {
		h.registerLocked(normalizeDevice(dev), contracts.StateConnected)
	}
	h.mu.Unlock()

	access.OnConnectivityChange(h.handleConnectivity)
	for _, dev := range devices {
		h.bindDevice(normalizeDevice(dev).ID)
	}

	h.logger.Info("MIDI access accepted", h.logger.Field().Int("devices", len(devices)))
	return nil
}

// HasPermission reports the host's current grant state without mutating it.
// It returns false when the backend has no permission-query facility.
func (h *HuMIDI) HasPermission() bool {
	return h.access.HasPermission()
}

// AccessStatus returns the settled state of the permission handshake.
func (h *HuMIDI) AccessStatus() contracts.AccessStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// On subscribes h to events of the given type on every channel. The handler
// sees each matching emission exactly once regardless of its channel.
func (h *HuMIDI) On(typ contracts.EventType, handler contracts.Handler) {
	h.registry.On(contracts.ChannelAll, typ, handler)
}

// Off removes a wildcard subscription. Removing an absent handler is a no-op.
func (h *HuMIDI) Off(typ contracts.EventType, handler contracts.Handler) {
	h.registry.Off(contracts.ChannelAll, typ, handler)
}

// OnChannel subscribes handler to events of the given type on one concrete
// channel. Emissions on other channels never reach it.
func (h *HuMIDI) OnChannel(channel contracts.Channel, typ contracts.EventType, handler contracts.Handler) {
	if !channel.Valid() {
		return
	}
	h.registry.On(channel, typ, handler)
}

// OffChannel removes a channel-scoped subscription.
func (h *HuMIDI) OffChannel(channel contracts.Channel, typ contracts.EventType, handler contracts.Handler) {
	h.registry.Off(channel, typ, handler)
}

// UnsubscribeChannel drops every subscription scoped to the given channel in
// one operation. Wildcard subscriptions survive.
func (h *HuMIDI) UnsubscribeChannel(channel contracts.Channel) {
	h.registry.DropChannel(channel)
}

// Inputs returns the known device handles in first-seen order. Disconnected
// devices stay listed with their state updated in place, so handles held by
// application code remain valid.
func (h *HuMIDI) Inputs() []*Input {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Input, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.inputs[id])
	}
	return out
}

// SetEnabled toggles the global gate. While disabled, every raw message from
// every device is dropped before decoding.
func (h *HuMIDI) SetEnabled(enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enabled = enabled
}

// IsEnabled reports the global gate.
func (h *HuMIDI) IsEnabled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.enabled
}

// ActiveNotes returns the notes currently sounding on a channel across all
// devices, in ascending order.
func (h *HuMIDI) ActiveNotes(channel contracts.Channel) []uint8 {
	return h.tracker.ActiveNotes(channel)
}

// Reset clears all subscriptions, tracked notes, and device state back to
// initial, including the access status. Intended for test isolation, not
// normal operation.
func (h *HuMIDI) Reset() {
	h.mu.Lock()
	h.inputs = make(map[string]*Input)
	h.order = nil
	h.enabled = true
	h.status = contracts.AccessUnrequested
	h.mu.Unlock()

	h.registry.Reset()
	h.tracker.Reset()
}

// Close stops the device-access backend. The engine keeps its subscriber and
// tracker state; it simply receives no further host callbacks.
func (h *HuMIDI) Close() error {
	return h.access.Stop()
}

// registerLocked creates or refreshes the handle for a device descriptor.
// The caller holds h.mu.
func (h *HuMIDI) registerLocked(dev contracts.DeviceInfo, state contracts.ConnectionState) *Input {
	in, ok := h.inputs[dev.ID]
	if !ok {
		in = newInput(dev)
		h.inputs[dev.ID] = in
		h.order = append(h.order, dev.ID)
	}
	in.setState(state)
	return in
}

// bindDevice routes a device's raw stream into the decode pipeline.
func (h *HuMIDI) bindDevice(deviceID string) {
	err := h.access.BindInput(deviceID, func(data []byte) {
		h.handleMessage(deviceID, data)
	})
	if err != nil {
		h.logger.Warn("failed to bind input stream",
			h.logger.Field().String("device", deviceID),
			h.logger.Field().Error("error", err))
	}
}

// handleMessage is the per-device raw message callback: gate, decode, track,
// emit. Undecodable messages are dropped silently.
func (h *HuMIDI) handleMessage(deviceID string, data []byte) {
	h.mu.Lock()
	if !h.enabled {
		h.mu.Unlock()
		return
	}
	in := h.inputs[deviceID]
	h.mu.Unlock()

	if in != nil && !in.IsEnabled() {
		return
	}

	msg, ok := protocol.Decode(data)
	if !ok {
		return
	}

	switch msg.Kind {
	case protocol.KindNoteOn:
		h.tracker.NoteOn(msg.Channel, msg.Note, deviceID)
		h.registry.Emit(msg.Channel, contracts.EventNoteOn, contracts.NoteOnEvent{
			Channel:  msg.Channel,
			Note:     msg.Note,
			Velocity: msg.Velocity,
		})
	case protocol.KindNoteOff:
		h.tracker.NoteOff(msg.Channel, msg.Note, deviceID)
		h.registry.Emit(msg.Channel, contracts.EventNoteOff, contracts.NoteOffEvent{
			Channel: msg.Channel,
			Note:    msg.Note,
		})
	case protocol.KindPitchBend:
		h.registry.Emit(msg.Channel, contracts.EventPitchBend, contracts.PitchBendEvent{
			Channel: msg.Channel,
			Value:   msg.Bend,
		})
	case protocol.KindControlChange:
		h.emitControlChange(msg)
	}
}

// emitControlChange routes a decoded control-change message. Controllers
// outside the controller table decode successfully but emit nothing.
func (h *HuMIDI) emitControlChange(msg protocol.Message) {
	if msg.Controller != protocol.ControllerSustain {
		return
	}
	if msg.ControllerValue >= 64 {
		h.registry.Emit(msg.Channel, contracts.EventSustainOn, contracts.SustainOnEvent{
			Channel: msg.Channel,
			Value:   msg.ControllerValue,
		})
		return
	}
	h.registry.Emit(msg.Channel, contracts.EventSustainOff, contracts.SustainOffEvent{
		Channel: msg.Channel,
		Value:   msg.ControllerValue,
	})
}

// handleConnectivity is the shared device lifecycle callback. On disconnect,
// stuck-note cleanup runs before the disconnect event so subscribers observe
// "notes released, then device gone", never the reverse.
func (h *HuMIDI) handleConnectivity(dev contracts.DeviceInfo, state contracts.ConnectionState) {
	dev = normalizeDevice(dev)

	h.mu.Lock()
	in := h.registerLocked(dev, state)
	h.mu.Unlock()

	if state == contracts.StateConnected {
		h.bindDevice(dev.ID)
		h.logger.Info("MIDI device connected",
			h.logger.Field().String("device", dev.ID),
			h.logger.Field().String("name", dev.Name))
		h.registry.Emit(contracts.ChannelAll, contracts.EventInputConnected,
			contracts.InputConnectedEvent{Device: in.Info()})
		return
	}

	held := h.tracker.ReleaseDevice(dev.ID)
	for _, n := range held {
		h.registry.Emit(n.Channel, contracts.EventNoteOff, contracts.NoteOffEvent{
			Channel: n.Channel,
			Note:    n.Note,
		})
	}
	if len(held) > 0 {
		h.logger.Debug("released stuck notes for disconnected device",
			h.logger.Field().String("device", dev.ID),
			h.logger.Field().Int("notes", len(held)))
	}
	h.logger.Info("MIDI device disconnected", h.logger.Field().String("device", dev.ID))
	h.registry.Emit(contracts.ChannelAll, contracts.EventInputDisconnected,
		contracts.InputDisconnectedEvent{Device: in.Info()})
}

// normalizeDevice replaces empty descriptor fields with documented fallbacks.
func normalizeDevice(dev contracts.DeviceInfo) contracts.DeviceInfo {
	if dev.ID == "" {
		dev.ID = fallbackID
	}
	if dev.Name == "" {
		dev.Name = fallbackName
	}
	if dev.Manufacturer == "" {
		dev.Manufacturer = fallbackManufacturer
	}
	return dev
}
