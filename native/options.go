package native

import "github.com/wippyai/script-containers/layout"

// Options configures native container layouts.
type Options struct {
	// PairPolicy selects the map slot shape. It must match the native map
	// representation being targeted and is fixed for a deployment.
	PairPolicy layout.PairPolicy
}

// DefaultOptions returns compact pair slots.
func DefaultOptions() Options {
	return Options{PairPolicy: layout.PairCompact}
}
