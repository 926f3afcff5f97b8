package steps

import (
	"fmt"
	"io/fs"

	"github.com/olimci/guffipedia/pkg/config"
	"github.com/olimci/guffipedia/pkg/events"
	"github.com/olimci/guffipedia/pkg/manifest"
	"github.com/olimci/guffipedia/pkg/utils/set"
)

func NewStepContext(man *manifest.Manifest, cfg *config.Config, opts *config.Options, sourceFS fs.FS, sourceRoot string, handler events.Handler, step Step) StepContext {
	if handler == nil {
		handler = events.NoopHandler{}
	}
	return &stepContext{
		id:           step.ID,
		manifest:     man,
		config:       cfg,
		options:      opts,
		sourceFS:     sourceFS,
		sourceRoot:   sourceRoot,
		reads:        set.FromSlice(step.Reads),
		writes:       set.FromSlice(step.Writes),
		eventHandler: handler,
	}
}

type stepContext struct {
	id StepID

	manifest   *manifest.Manifest
	config     *config.Config
	options    *config.Options
	sourceFS   fs.FS
	sourceRoot string
	reads      *set.Set[string]
	writes     *set.Set[string]

	eventHandler events.Handler
}

func (sc *stepContext) Get(key string) (any, bool) {
	if !sc.reads.Has(key) && !sc.writes.Has(key) {
		panic(fmt.Sprintf("step %s read registry key %q without declaring it", sc.id, key))
	}
	return sc.manifest.Get(key)
}

func (sc *stepContext) Set(key string, value any) {
	if !sc.writes.Has(key) {
		panic(fmt.Sprintf("step %s wrote registry key %q without declaring it", sc.id, key))
	}
	sc.manifest.Set(key, value)
}

func (sc *stepContext) Emit(artefact manifest.Artefact) {
	if artefact.Claim.Owner == "" {
		artefact.Claim.Owner = sc.id.String()
	}
	sc.manifest.Emit(artefact)
}

func (sc *stepContext) Source() (fs.FS, string) {
	return sc.sourceFS, sc.sourceRoot
}

func (sc *stepContext) Config() *config.Config {
	return sc.config
}

func (sc *stepContext) Options() *config.Options {
	return sc.options
}

func (sc *stepContext) Events() events.Handler {
	return events.HandlerFunc(func(event events.Event) {
		if event.Step == "" {
			event.Step = sc.id.String()
		}
		sc.eventHandler.Handle(event)
	})
}

func (sc *stepContext) event(level events.Level, source, message string, err error) {
	sc.eventHandler.Handle(events.Event{
		Level:   level,
		Step:    sc.id.String(),
		Source:  source,
		Message: message,
		Error:   err,
	})
}

func (sc *stepContext) Debugf(format string, args ...any) {
	sc.event(events.Debug, "", fmt.Sprintf(format, args...), nil)
}

func (sc *stepContext) Infof(format string, args ...any) {
	sc.event(events.Info, "", fmt.Sprintf(format, args...), nil)
}

func (sc *stepContext) Warnf(source string, format string, args ...any) {
	sc.event(events.Warn, source, fmt.Sprintf(format, args...), nil)
}

func (sc *stepContext) Error(err error, message string) {
	sc.event(events.Error, "", message, err)
}

func (sc *stepContext) Errorf(err error, format string, args ...any) {
	sc.event(events.Error, "", fmt.Sprintf(format, args...), err)
}
