package iofs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/olimci/guffipedia/pkg/utils/fileutils"
)

// FromOS wraps a directory on disk.
func FromOS(path string) *OSFS {
	return &OSFS{path: path}
}

// OSFS is a directory on disk. Relative paths passed to its methods are
// slash separated and resolved below the directory.
type OSFS struct {
	path string
}

func (o *OSFS) FS(ctx context.Context) (fs.FS, error) {
	return os.DirFS(o.path), nil
}

func (o *OSFS) Root() string {
	return "."
}

func (o *OSFS) Path() string {
	return o.path
}

func (o *OSFS) EnsureRoot() error {
	info, err := os.Stat(o.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(o.path, 0o755); err != nil {
				return fmt.Errorf("failed to create output dir %q: %w", o.path, err)
			}
			return nil
		}
		return fmt.Errorf("failed to stat output dir %q: %w", o.path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output dir %q is not a directory", o.path)
	}
	return nil
}

func (o *OSFS) full(rel string) string {
	return filepath.Join(o.path, filepath.FromSlash(rel))
}

func (o *OSFS) MkdirAll(rel string, perm fs.FileMode) error {
	return os.MkdirAll(o.full(rel), perm)
}

func (o *OSFS) Remove(rel string) error {
	return os.Remove(o.full(rel))
}

func (o *OSFS) RemoveAll(rel string) error {
	return os.RemoveAll(o.full(rel))
}

// Write builds rel with gen. Existing files are only replaced when the
// content changed, which keeps their modification time stable for the dev
// server's watcher.
func (o *OSFS) Write(rel string, gen WriterFunc, exists bool) error {
	full := o.full(rel)
	if exists {
		return fileutils.AtomicEdit(full, gen)
	}
	return fileutils.AtomicWrite(full, gen)
}

func (o *OSFS) DisplayPath(rel string) string {
	return o.full(rel)
}
