package binding

import (
	"github.com/wippyai/script-containers/bridge"
	"github.com/wippyai/script-containers/native"
)

// Options configures the containers a Surface creates.
type Options struct {
	Bridge bridge.Options
	Native native.Options
}

// DefaultOptions returns the default surface options.
func DefaultOptions() Options {
	return Options{
		Bridge: bridge.DefaultOptions(),
		Native: native.DefaultOptions(),
	}
}
