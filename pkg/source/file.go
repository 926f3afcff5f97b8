package source

import (
	"context"
	"fmt"
	"os"

	"github.com/olimci/guffipedia/pkg/words"
)

// File reads rows from a local JSON file.
type File struct {
	Path string
}

func (f *File) Fetch(ctx context.Context) ([]words.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	rows, err := words.DecodeRows(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return rows, nil
}
