package bridge

// Options configures bridge behaviour.
type Options struct {
	// DestroyBeforeSet makes Array.Set destroy the previous value before it
	// reinitializes the slot. Off by default, which leaks whatever the old
	// value owned.
	DestroyBeforeSet bool
}

// DefaultOptions returns the default bridge options.
func DefaultOptions() Options {
	return Options{}
}
