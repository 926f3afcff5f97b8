package watcher

// Event is a debounced batch of file changes.
type Event struct {
	Reason string
	Paths  []string
	// Config is set when the config file itself changed.
	Config bool
}
