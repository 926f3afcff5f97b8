package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/olimci/guffipedia/pkg/config"
	"github.com/olimci/guffipedia/pkg/events"
	"github.com/olimci/guffipedia/pkg/iofs"
	"github.com/olimci/guffipedia/pkg/manifest"
	"github.com/olimci/guffipedia/pkg/steps"
	"github.com/olimci/guffipedia/pkg/steps/keys"
	"github.com/olimci/guffipedia/pkg/utils/fileutils"
	"golang.org/x/sync/errgroup"
)

var (
	ErrDuplicateStep        = errors.New("duplicate step")
	ErrSelfDependency       = errors.New("self dependency")
	ErrUnresolvedDependency = errors.New("unresolved dependency")
	ErrCircularDependency   = errors.New("circular dependency")
	ErrTaskError            = errors.New("task error")
	ErrBuildFailed          = errors.New("build failed")
)

// Plan is a set of steps and whether their artefacts replace the output
// directory. Plans that skip dist only refresh the data files.
type Plan struct {
	Steps []steps.Step
	Dist  bool
}

// Site builds the whole site.
func Site() Plan {
	return Plan{Steps: steps.All(), Dist: true}
}

// Data fetches and derives the words, writing only the data files.
func Data() Plan {
	return Plan{Steps: steps.Data(), Dist: false}
}

// LoadConfig loads the config at path. A missing file yields the defaults.
func LoadConfig(path string, handler events.Handler) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if handler != nil {
			handler.Handle(events.Event{
				Level:   events.Info,
				Source:  path,
				Message: "config not found, using defaults",
			})
		}
		cfg := config.DefaultConfig()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}

// Run loads the config named by opts and executes plan.
func Run(plan Plan, opts *config.Options) (*config.Config, error) {
	cfg, err := LoadConfig(opts.ConfigPath, opts.EventHandler)
	if err != nil {
		return nil, err
	}
	return cfg, Execute(plan, cfg, opts)
}

// ProjectRoot is the directory holding the config file; every configured
// path is relative to it.
func ProjectRoot(opts *config.Options) string {
	return filepath.Dir(opts.ConfigPath)
}

// OutputDir resolves the output directory, preferring opts over cfg.
func OutputDir(cfg *config.Config, opts *config.Options) string {
	if opts.OutputPath != "" {
		return opts.OutputPath
	}
	if filepath.IsAbs(cfg.Build.Output) {
		return cfg.Build.Output
	}
	return filepath.Join(ProjectRoot(opts), cfg.Build.Output)
}

// Execute runs the plan's steps as a DAG, then writes the output. Nothing is
// written unless every step succeeds.
func Execute(plan Plan, cfg *config.Config, opts *config.Options) error {
	collector := events.NewCollector(opts.EventHandler)

	err := execute(plan, cfg, opts, collector)
	if err != nil && opts.Dev && plan.Dist {
		collector.Handle(events.Event{
			Level:   events.Error,
			Message: "build failed",
			Error:   err,
		})
		if ferr := writeFailure(OutputDir(cfg, opts), collector.Summary()); ferr != nil {
			collector.Handle(events.Event{
				Level:   events.Error,
				Message: "failed to write failure page",
				Error:   ferr,
			})
		}
	}

	return err
}

func execute(plan Plan, cfg *config.Config, opts *config.Options, collector *events.Collector) error {
	root := ProjectRoot(opts)
	source := iofs.FromOS(root)
	sourceFS, err := source.FS(opts.Context)
	if err != nil {
		return err
	}

	man := manifest.New()
	if err := runSteps(plan.Steps, man, cfg, opts, sourceFS, root, collector); err != nil {
		return err
	}

	failLevel := events.Error
	if opts.FailOnWarn {
		failLevel = events.Warn
	}
	if collector.HasLevel(failLevel) {
		return fmt.Errorf("%w: %s", ErrBuildFailed, collector.Summary().Counts())
	}

	if plan.Dist {
		manifestOpts := []manifest.Option{
			manifest.WithContext(opts.Context),
			manifest.WithMaxWorkers(opts.MaxWorkers),
		}
		if err := man.Build(iofs.FromOS(OutputDir(cfg, opts)), collector, manifestOpts...); err != nil {
			return fmt.Errorf("%w: %w", ErrBuildFailed, err)
		}
	}

	dataDir := cfg.Build.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(root, dataDir)
	}
	for _, doc := range manifest.GetAs(man, keys.DataFiles) {
		if err := fileutils.AtomicEdit(filepath.Join(dataDir, filepath.FromSlash(doc.Claim.Target)), doc.Builder); err != nil {
			return fmt.Errorf("%w: write %s: %w", ErrBuildFailed, doc.Claim.Target, err)
		}
	}

	return nil
}

// runSteps runs steps on an errgroup as their dependencies complete.
// Only this goroutine calls g.Go; finished steps report back on results.
func runSteps(list []steps.Step, man *manifest.Manifest, cfg *config.Config, opts *config.Options, sourceFS fs.FS, root string, handler events.Handler) error {
	d, err := newDAG(list)
	if err != nil {
		return err
	}

	pending := d.ready()
	if len(pending) == 0 && len(list) > 0 {
		return ErrCircularDependency
	}

	g, ctx := errgroup.WithContext(opts.Context)
	if opts.MaxWorkers > 0 {
		g.SetLimit(opts.MaxWorkers)
	}

	type result struct {
		id  steps.StepID
		err error
	}
	results := make(chan result, len(list))

	var running, done int
	for len(pending) > 0 || running > 0 {
		for _, id := range pending {
			step := d.m[id]
			running++
			g.Go(func() error {
				err := runStep(ctx, step, steps.NewStepContext(man, cfg, opts, sourceFS, root, handler, step))
				results <- result{id: step.ID, err: err}
				return err
			})
		}
		pending = pending[:0]

		res := <-results
		running--
		if res.err != nil {
			break
		}

		done++
		for _, req := range d.adj[res.id] {
			d.deg[req]--
			if d.deg[req] == 0 {
				pending = append(pending, req)
			}
		}
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	if done != len(list) {
		return fmt.Errorf("%w: %v", ErrCircularDependency, d.stuck())
	}

	return nil
}

func runStep(ctx context.Context, step steps.Step, sc steps.StepContext) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := step.Fn(ctx, sc); err != nil {
		return fmt.Errorf("%w (%s): %w", ErrTaskError, step.ID, err)
	}
	return nil
}
