package config

import (
	"context"
	"math/rand/v2"
	"runtime"

	"github.com/olimci/guffipedia/pkg/events"
	"github.com/olimci/guffipedia/pkg/source"
)

// DefaultOptions constructs an Options with default values.
func DefaultOptions() *Options {
	return &Options{
		Context:      context.Background(),
		ConfigPath:   "guffipedia.toml",
		Env:          Development,
		MaxWorkers:   runtime.NumCPU(),
		Dev:          false,
		EventHandler: new(events.NoopHandler),
	}
}

// Options represents the runtime options for a build.
type Options struct {
	Context    context.Context
	ConfigPath string
	OutputPath string

	Env        Env
	MaxWorkers int
	Dev        bool
	FailOnWarn bool

	EventHandler events.Handler
	// Fetcher overrides the row source described by the config.
	Fetcher source.Fetcher
	// Rand picks the random home word. Nil seeds a new generator per build.
	Rand *rand.Rand
}

// WithContext sets the root context for building
func (o *Options) WithContext(ctx context.Context) *Options {
	o.Context = ctx
	return o
}

// WithConfig sets the path to the configuration file
func (o *Options) WithConfig(path string) *Options {
	o.ConfigPath = path
	return o
}

// WithOutput sets the path to the output directory, overriding config
func (o *Options) WithOutput(path string) *Options {
	o.OutputPath = path
	return o
}

// WithEnv sets the target environment
func (o *Options) WithEnv(env Env) *Options {
	o.Env = env
	return o
}

// WithMaxWorkers sets the maximum number of workers to use for building
func (o *Options) WithMaxWorkers(n int) *Options {
	if n <= 0 {
		panic("max workers must be > 0")
	}

	o.MaxWorkers = n
	return o
}

// WithDev enables development mode
func (o *Options) WithDev() *Options {
	o.Dev = true
	return o
}

// WithFailOnWarn makes warnings fail the build
func (o *Options) WithFailOnWarn() *Options {
	o.FailOnWarn = true
	return o
}

// WithEventHandler sets the event handler for building
func (o *Options) WithEventHandler(handler events.Handler) *Options {
	o.EventHandler = handler
	return o
}

// WithFetcher sets the row source, overriding config
func (o *Options) WithFetcher(f source.Fetcher) *Options {
	o.Fetcher = f
	return o
}

// WithRand sets the random source used to pick home words
func (o *Options) WithRand(rng *rand.Rand) *Options {
	o.Rand = rng
	return o
}
