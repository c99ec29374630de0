package contracts

// ClientOptions defines the configuration options for the engine.
type ClientOptions struct {
	Logger     Logger       // Logger for engine lifecycle and diagnostics.
	LogLevel   LogLevel     // Minimum level the logger emits.
	Access     MIDIAccess   // Host device-access collaborator.
	ClientName string       // Name registered with the host MIDI service.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the engine.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the engine.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithAccess replaces the platform device-access backend. Tests use this to
// drive the engine with a scripted device set.
func WithAccess(a MIDIAccess) Option {
	return func(opts *ClientOptions) {
		opts.Access = a
	}
}

// WithClientName sets the name registered with the host MIDI service.
func WithClientName(name string) Option {
	return func(opts *ClientOptions) {
		opts.ClientName = name
	}
}
