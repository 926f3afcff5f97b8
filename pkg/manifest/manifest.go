package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"sync"

	"github.com/olimci/guffipedia/pkg/events"
	"github.com/olimci/guffipedia/pkg/iofs"
	"github.com/olimci/guffipedia/pkg/utils/fileutils"
	"github.com/olimci/guffipedia/pkg/utils/set"
	"golang.org/x/sync/errgroup"
)

var (
	ErrConflicts  = errors.New("conflicts")
	ErrUnsafePath = errors.New("unsafe artefact path")
)

// K is a typed key
type K[T any] string

// GetAs retrieves a value from the manifest as the specified type. UB for bad keys/types
func GetAs[T any](m *Manifest, k K[T]) T {
	if v, ok := m.Get(string(k)); ok {
		if vt, ok := v.(T); ok {
			return vt
		}
	}
	return *new(T)
}

func SetAs[T any](m *Manifest, k K[T], v T) {
	m.Set(string(k), v)
}

// New creates a new manifest
func New() *Manifest {
	return &Manifest{
		artefacts: make([]Artefact, 0),
		registry:  make(map[string]any),
	}
}

// Manifest represents a manifest of build artefacts, and a registry of build information
type Manifest struct {
	artefacts   []Artefact
	artefactsMu sync.Mutex

	registry   map[string]any
	registryMu sync.RWMutex
}

// Set sets a value in the registry
func (m *Manifest) Set(k string, v any) {
	m.registryMu.Lock()
	defer m.registryMu.Unlock()

	m.registry[k] = v
}

// Get retrieves a value from the registry
func (m *Manifest) Get(k string) (any, bool) {
	m.registryMu.RLock()
	defer m.registryMu.RUnlock()

	v, ok := m.registry[k]
	return v, ok
}

// Emit adds an artefact to the manifest
func (m *Manifest) Emit(a Artefact) {
	m.artefactsMu.Lock()
	defer m.artefactsMu.Unlock()

	m.artefacts = append(m.artefacts, a)
}

// Artefacts returns the emitted artefacts in emission order.
func (m *Manifest) Artefacts() []Artefact {
	m.artefactsMu.Lock()
	defer m.artefactsMu.Unlock()

	return slices.Clone(m.artefacts)
}

// Build writes every artefact to out and removes files and directories that
// no artefact claims. Nothing is written when claims conflict, unless
// conflicts are ignored.
func (m *Manifest) Build(out iofs.Writable, handler events.Handler, opts ...Option) error {
	o := defaultOptions().apply(opts...)
	if handler == nil {
		handler = events.NoopHandler{}
	}

	m.artefactsMu.Lock()
	defer m.artefactsMu.Unlock()

	artefacts, conflicts := makeArtefacts(m.artefacts)
	for target, claims := range conflicts {
		owners := make([]string, len(claims))
		for i, claim := range claims {
			owners[i] = claim.Owner
		}
		handler.Handle(events.Event{
			Level:   events.Error,
			Source:  target,
			Message: fmt.Sprintf("file conflict between %v", owners),
			Error:   ErrConflicts,
		})
	}
	if !o.ignoreConflicts && len(conflicts) > 0 {
		return fmt.Errorf("%w: %d target(s) claimed more than once", ErrConflicts, len(conflicts))
	}

	cleaned := make(map[string]ArtefactBuilder, len(artefacts))
	for dest, a := range artefacts {
		rel := path.Clean(filepath.ToSlash(dest))
		if path.IsAbs(rel) || isRel(rel) {
			return fmt.Errorf("%w: %q escapes dist", ErrUnsafePath, dest)
		}
		cleaned[rel] = a
	}
	artefacts = cleaned

	if err := out.EnsureRoot(); err != nil {
		return err
	}

	gotFiles, gotDirs, err := walkDestination(o.Context, out)
	if err != nil {
		return fmt.Errorf("walk dist: %w", err)
	}

	wantDirs := manifestDirs(artefacts)

	for _, rel := range gotFiles.Values() {
		if _, wants := artefacts[rel]; !wants {
			if err := out.Remove(rel); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to remove %s: %w", displayPath(out, rel), err)
			}
		}
	}

	for _, rel := range gotDirs.Values() {
		if !wantDirs.Has(rel) {
			if err := out.RemoveAll(rel); err != nil {
				return fmt.Errorf("failed to remove %s: %w", displayPath(out, rel), err)
			}
		}
	}

	for _, rel := range set.Sorted(wantDirs) {
		if rel == "." {
			continue
		}
		if !gotDirs.Has(rel) {
			if err := out.MkdirAll(rel, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", displayPath(out, rel), err)
			}
		}
	}

	g, ctx := errgroup.WithContext(o.Context)
	if o.maxWorkers > 0 {
		g.SetLimit(o.maxWorkers)
	}

	for target, artefact := range artefacts {
		exists := gotFiles.Has(target)

		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err := out.Write(target, artefact, exists); err != nil {
				if exists {
					return fmt.Errorf("failed to edit %s: %w", displayPath(out, target), err)
				}
				return fmt.Errorf("failed to write %s: %w", displayPath(out, target), err)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to build: %w", err)
	}

	return nil
}

func walkDestination(ctx context.Context, out iofs.Writable) (files, dirs *set.Set[string], err error) {
	fsys, err := out.FS(ctx)
	if err != nil {
		return nil, nil, err
	}

	fileList, dirList, err := fileutils.WalkFS(fsys, out.Root())
	if err != nil {
		return nil, nil, err
	}

	return set.FromSlice(fileList), set.FromSlice(dirList), nil
}

func displayPath(out iofs.Writable, rel string) string {
	if d, ok := out.(interface{ DisplayPath(string) string }); ok {
		return d.DisplayPath(rel)
	}
	return rel
}
