package humidi

import (
	"github.com/d-buckner/humidi/internal/logger"
	"github.com/d-buckner/humidi/sdk/contracts"
)

// applyDefaultOptions sets default values for ClientOptions if not
// explicitly provided: a zap-backed logger at Info level and the platform
// device-access backend for the current operating system.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.ClientName == "" {
		options.ClientName = "HuMIDI"
	}
	options.Logger.SetLevel(options.LogLevel)

	if options.Access == nil {
		access, err := newPlatformAccess(options)
		if err != nil {
			return contracts.ClientOptions{}, err
		}
		options.Access = access
	}

	return *options, nil
}
