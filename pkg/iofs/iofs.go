// Package iofs abstracts the directories a build reads from and writes to.
package iofs

import (
	"context"
	"io"
	"io/fs"
)

// WriterFunc produces the content of one output file.
type WriterFunc func(w io.Writer) error

// Writable is an output directory. Paths are slash separated and relative to
// Root. Write must be safe to call from several goroutines.
type Writable interface {
	FS(ctx context.Context) (fs.FS, error)
	Root() string

	EnsureRoot() error
	MkdirAll(rel string, perm fs.FileMode) error
	Remove(rel string) error
	RemoveAll(rel string) error
	Write(rel string, gen WriterFunc, exists bool) error
}
