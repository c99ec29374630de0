package protocol

// ControllerKind classifies the controller number of a control-change
// message into the semantic controllers the engine emits events for.
type ControllerKind int

const (
	// ControllerUnhandled marks controller numbers that decode successfully
	// but produce no application event.
	ControllerUnhandled ControllerKind = iota
	// ControllerSustain is the sustain pedal (controller number 64).
	ControllerSustain
)

// controllerTable maps continuous-controller numbers to their semantic kind.
var controllerTable = map[byte]ControllerKind{
	64: ControllerSustain,
}

// lookupController resolves a controller number; numbers absent from the
// table are recognized but unhandled.
func lookupController(number byte) ControllerKind {
	if kind, ok := controllerTable[number]; ok {
		return kind
	}
	return ControllerUnhandled
}
