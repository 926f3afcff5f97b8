package manifest

import (
	"context"
	"runtime"
)

func defaultOptions() *options {
	return &options{
		Context:    context.Background(),
		maxWorkers: runtime.NumCPU(),
	}
}

type options struct {
	Context         context.Context
	maxWorkers      int
	ignoreConflicts bool
}

func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}

	return o
}

type Option func(*options)

func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.Context = ctx
	}
}

func WithMaxWorkers(n int) Option {
	return func(o *options) {
		o.maxWorkers = n
	}
}

// IgnoreConflicts reports conflicting claims as events and keeps the last
// claim instead of failing.
func IgnoreConflicts() Option {
	return func(o *options) {
		o.ignoreConflicts = true
	}
}
