package events

import (
	"slices"
	"sync"
)

func NewCollector(handler Handler) *Collector {
	if handler == nil {
		handler = NoopHandler{}
	}
	return &Collector{
		handler: handler,
	}
}

// Collector records events and forwards them to an inner handler. It is safe
// for concurrent use by parallel build steps.
type Collector struct {
	mu      sync.RWMutex
	events  []Event
	handler Handler
}

func (c *Collector) Handle(event Event) {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()

	c.handler.Handle(event)
}

func (c *Collector) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.events)
}

// AtLevel returns the events at or above level.
func (c *Collector) AtLevel(level Level) []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Event, 0)
	for _, event := range c.events {
		if event.Level >= level {
			out = append(out, event)
		}
	}
	return out
}

// HasLevel reports whether any event at or above level was recorded.
func (c *Collector) HasLevel(level Level) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, event := range c.events {
		if event.Level >= level {
			return true
		}
	}
	return false
}

func (c *Collector) Clear() {
	c.mu.Lock()
	c.events = nil
	c.mu.Unlock()
}

func (c *Collector) Summary() *Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := new(Summary)
	for _, event := range c.events {
		switch event.Level {
		case Warn:
			out.WarnCount++
		case Error:
			out.ErrorCount++
			out.Errors = append(out.Errors, event)
		}
	}
	out.Full = slices.Clone(c.events)

	return out
}
