//go:build windows
// +build windows

// Package winmmaccess implements the device-access collaborator over the
// Windows multimedia MIDI API (winmm.dll).
package winmmaccess

import (
	"errors"
	"fmt"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/d-buckner/humidi/sdk/contracts"
)

// HMIDIIN is a Windows MIDI input device handle.
type HMIDIIN windows.Handle

// Constants for callback flags.
const (
	CALLBACK_FUNCTION = 0x00030000 // The callback is a function pointer.
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status.
)

// Constants for MIDI input callback messages.
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened.
	MIM_CLOSE     = 0x3C2 // MIDI device closed.
	MIM_DATA      = 0x3C3 // MIDI data received.
	MIM_ERROR     = 0x3C5 // MIDI error.
	MIM_LONGERROR = 0x3C6 // Long MIDI error.
	MIM_MOREDATA  = 0x3CC // More MIDI data available.
)

// midiInCaps mirrors the MIDIINCAPSW structure.
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// Error definitions for winmm connection and handling issues.
var (
	ErrNotRequested  = errors.New("midi access has not been requested")
	ErrUnknownDevice = errors.New("unknown MIDI device")
)

// pollInterval is how often devices are re-enumerated for hot-plug detection.
const pollInterval = time.Second

// Load the winmm.dll library and required functions.
var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// deviceSlot is one open winmm device. Slots are handed to the winmm
// callback by token so no Go pointer crosses the boundary.
type deviceSlot struct {
	token  uintptr
	handle HMIDIIN
	info   contracts.DeviceInfo

	mu sync.Mutex
	fn contracts.RawMessageFunc
}

func (s *deviceSlot) deliver(data []byte) {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn != nil {
		fn(data)
	}
}

func (s *deviceSlot) bind(fn contracts.RawMessageFunc) {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
}

// slots maps callback tokens to open devices. The winmm callback runs on a
// system thread, so the table is guarded independently of any Access.
var (
	slotsMu   sync.Mutex
	slots     = make(map[uintptr]*deviceSlot)
	nextToken uintptr
)

func storeSlot(s *deviceSlot) {
	slotsMu.Lock()
	nextToken++
	s.token = nextToken
	slots[s.token] = s
	slotsMu.Unlock()
}

func dropSlot(token uintptr) {
	slotsMu.Lock()
	delete(slots, token)
	slotsMu.Unlock()
}

func loadSlot(token uintptr) *deviceSlot {
	slotsMu.Lock()
	s := slots[token]
	slotsMu.Unlock()
	return s
}

// Access manages winmm MIDI input devices and watches for device changes.
type Access struct {
	logger contracts.Logger

	mu           sync.Mutex
	granted      bool
	devices      map[string]*deviceSlot
	connectivity contracts.ConnectivityFunc
	callback     uintptr
	stopPoll     chan struct{}
	stopOnce     sync.Once
}

// NewAccess creates the winmm device-access backend.
func NewAccess(options *contracts.ClientOptions) (contracts.MIDIAccess, error) {
	options.Logger.Info("winmm access backend created")
	return &Access{
		logger:  options.Logger,
		devices: make(map[string]*deviceSlot),
	}, nil
}

// Request enumerates and opens every MIDI input device, then starts the
// hot-plug watcher.
func (a *Access) Request() ([]contracts.DeviceInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.granted {
		return a.deviceListLocked(), nil
	}

	a.callback = windows.NewCallback(midiInCallback)

	for _, dev := range enumerate() {
		if err := a.openDeviceLocked(dev.index, dev.info); err != nil {
			a.logger.Warn("failed to open MIDI device",
				a.logger.Field().String("device", dev.info.ID),
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
	slot, ok := a.devices[deviceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, deviceID)
	}
	slot.bind(fn)
	return nil
}

// OnConnectivityChange registers the callback notified on device changes.
func (a *Access) OnConnectivityChange(fn contracts.ConnectivityFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connectivity = fn
}

// HasPermission reports whether devices are open. winmm has no permission
// prompt, so a successful Request is the grant.
func (a *Access) HasPermission() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.granted
}

// Stop closes every open device and halts the watcher.
func (a *Access) Stop() error {
	a.stopOnce.Do(func() {
		a.mu.Lock()
		defer a.mu.Unlock()

		if a.stopPoll != nil {
			close(a.stopPoll)
			a.stopPoll = nil
		}
		for id, slot := range a.devices {
			a.closeSlotLocked(slot)
			delete(a.devices, id)
		}
		a.granted = false
	})
	return nil
}

// enumeratedDevice pairs a winmm device index with its descriptor.
type enumeratedDevice struct {
	index uint32
	info  contracts.DeviceInfo
}

// enumerate lists the currently attached MIDI input devices.
func enumerate() []enumeratedDevice {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)

	devices := make([]enumeratedDevice, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, enumeratedDevice{
			index: i,
			info: contracts.DeviceInfo{
				ID:           name,
				Name:         name,
				Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
			},
		})
	}
	return devices
}

// openDeviceLocked opens one device index and starts its capture. The caller
// holds a.mu.
func (a *Access) openDeviceLocked(index uint32, info contracts.DeviceInfo) error {
	slot := &deviceSlot{info: info}
	storeSlot(slot)

	fdwOpen := CALLBACK_FUNCTION | MIDI_IO_STATUS
	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&slot.handle)),
		uintptr(index),
		a.callback,
		slot.token,
		uintptr(fdwOpen),
	)
	if r1 != 0 {
		dropSlot(slot.token)
		return fmt.Errorf("midiInOpen device %d: %v", index, err)
	}

	r1, _, err = procMidiInStart.Call(uintptr(slot.handle))
	if r1 != 0 {
		_, _, _ = procMidiInClose.Call(uintptr(slot.handle))
		dropSlot(slot.token)
		return fmt.Errorf("midiInStart device %d: %v", index, err)
	}

	a.devices[info.ID] = slot
	return nil
}

func (a *Access) closeSlotLocked(slot *deviceSlot) {
	if slot.handle != 0 {
		_, _, _ = procMidiInStop.Call(uintptr(slot.handle))
		_, _, _ = procMidiInClose.Call(uintptr(slot.handle))
		slot.handle = 0
	}
	dropSlot(slot.token)
}

func (a *Access) deviceListLocked() []contracts.DeviceInfo {
	devices := make([]contracts.DeviceInfo, 0, len(a.devices))
	for _, slot := range a.devices {
		devices = append(devices, slot.info)
	}
	return devices
}

// midiInCallback receives winmm input messages. For MIM_DATA, dwParam1
// packs the wire bytes: status in the low byte, then data1 and data2.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	if wMsg != MIM_DATA {
		return 0
	}

	slot := loadSlot(dwInstance)
	if slot == nil {
		return 0
	}

	status := byte(dwParam1 & 0xFF)
	data1 := byte((dwParam1 >> 8) & 0xFF)
	data2 := byte((dwParam1 >> 16) & 0xFF)
	slot.deliver([]byte{status, data1, data2})
	return 0
}

// watch re-enumerates devices on an interval and reports the diff through
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
	current := enumerate()

	a.mu.Lock()
	seen := make(map[string]bool, len(current))
	var connected []contracts.DeviceInfo
	var disconnected []contracts.DeviceInfo

	for _, dev := range current {
		seen[dev.info.ID] = true
		if _, ok := a.devices[dev.info.ID]; ok {
			continue
		}
		if err := a.openDeviceLocked(dev.index, dev.info); err != nil {
			a.logger.Warn("failed to open new MIDI device",
				a.logger.Field().String("device", dev.info.ID),
				a.logger.Field().Error("error", err))
			continue
		}
		connected = append(connected, dev.info)
	}

	for id, slot := range a.devices {
		if seen[id] {
			continue
		}
		a.closeSlotLocked(slot)
		delete(a.devices, id)
		disconnected = append(disconnected, slot.info)
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
