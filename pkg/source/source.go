// Package source fetches raw spreadsheet rows for a build.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/olimci/guffipedia/pkg/words"
)

var (
	ErrMissingEnv = errors.New("environment variable not set")
	ErrStatus     = errors.New("unexpected status")
)

// Fetcher returns the current set of rows.
type Fetcher interface {
	Fetch(ctx context.Context) ([]words.Row, error)
}

// FetcherFunc adapts a function to a Fetcher.
type FetcherFunc func(ctx context.Context) ([]words.Row, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]words.Row, error) {
	return f(ctx)
}

// LoadEnv loads variables from a dotenv file without overriding ones already
// set. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ExpandURL substitutes ${VAR} references in raw from the environment. Every
// referenced variable must be set and non-empty.
func ExpandURL(raw string) (string, error) {
	var missing []string
	out := os.Expand(raw, func(name string) string {
		v := os.Getenv(name)
		if v == "" {
			missing = append(missing, name)
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}
	return out, nil
}
