package internal

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/olimci/guffipedia/pkg/build"
	"github.com/olimci/guffipedia/pkg/config"
	"github.com/olimci/guffipedia/pkg/events"
	"github.com/olimci/guffipedia/pkg/source"
	"github.com/olimci/guffipedia/pkg/steps"
)

// Builder runs development builds, reusing fetched rows between rebuilds
// until a refetch is requested or the source config changes.
type Builder struct {
	configPath string
	distDir    string

	mu      sync.Mutex
	cfg     *config.Config
	source  config.ConfigSource
	fetcher *source.Cached
	current *events.Collector
}

type BuildResult struct {
	Duration time.Duration
	Error    error
	Reason   string
	Paths    []string
	Number   int
	Events   []events.Event
}

func NewBuilder(configPath, distDir string) (*Builder, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	b := &Builder{
		configPath: abs,
		distDir:    distDir,
	}

	cfg, err := build.LoadConfig(abs, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	b.cfg = cfg

	return b, nil
}

// Handle forwards fetch retry warnings to the build currently running.
func (b *Builder) Handle(event events.Event) {
	b.mu.Lock()
	current := b.current
	b.mu.Unlock()

	if current != nil {
		current.Handle(event)
	}
}

// Build runs one development build. With refetch set the cached rows are
// dropped first.
func (b *Builder) Build(ctx context.Context, refetch bool) BuildResult {
	start := time.Now()
	collector := events.NewCollector(nil)

	b.mu.Lock()
	b.current = collector
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.current = nil
		b.mu.Unlock()
	}()

	err := b.build(ctx, collector, refetch)

	return BuildResult{
		Duration: time.Since(start),
		Error:    err,
		Events:   collector.Events(),
	}
}

func (b *Builder) build(ctx context.Context, collector *events.Collector, refetch bool) error {
	cfg, err := build.LoadConfig(b.configPath, collector)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts := config.DefaultOptions().
		WithContext(ctx).
		WithConfig(b.configPath).
		WithEnv(config.Development).
		WithDev().
		WithEventHandler(collector)
	if b.distDir != "" {
		opts.WithOutput(b.distDir)
	}

	fetcher, err := b.fetcherFor(cfg, build.ProjectRoot(opts), refetch)
	if err != nil {
		return err
	}
	opts.WithFetcher(fetcher)

	b.mu.Lock()
	b.cfg = cfg
	b.mu.Unlock()

	return build.Execute(build.Site(), cfg, opts)
}

func (b *Builder) fetcherFor(cfg *config.Config, root string, refetch bool) (*source.Cached, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fetcher != nil && b.source == cfg.Source {
		if refetch {
			b.fetcher.Reset()
		}
		return b.fetcher, nil
	}

	inner, err := steps.NewFetcher(cfg, root, b)
	if err != nil {
		return nil, err
	}
	b.fetcher = source.NewCached(inner)
	b.source = cfg.Source
	return b.fetcher, nil
}

// Config is the config used by the latest build.
func (b *Builder) Config() *config.Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg
}

// OutputDir is the directory builds are written to.
func (b *Builder) OutputDir() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	opts := config.DefaultOptions().WithConfig(b.configPath)
	if b.distDir != "" {
		opts.WithOutput(b.distDir)
	}
	return build.OutputDir(b.cfg, opts)
}

// ConfigPath is the absolute path of the config file.
func (b *Builder) ConfigPath() string {
	return b.configPath
}
