package steps

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/olimci/guffipedia/pkg/config"
	"github.com/olimci/guffipedia/pkg/events"
	"github.com/olimci/guffipedia/pkg/source"
)

// NewFetcher builds the row source described by cfg. Relative paths resolve
// against root. Retries are reported to handler as warnings.
func NewFetcher(cfg *config.Config, root string, handler events.Handler) (source.Fetcher, error) {
	if cfg.Source.File != "" {
		file := cfg.Source.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(root, file)
		}
		return &source.File{Path: file}, nil
	}

	if cfg.Source.EnvFile != "" {
		envFile := cfg.Source.EnvFile
		if !filepath.IsAbs(envFile) {
			envFile = filepath.Join(root, envFile)
		}
		if err := source.LoadEnv(envFile); err != nil {
			return nil, err
		}
	}

	url, err := source.ExpandURL(cfg.Source.URL)
	if err != nil {
		return nil, fmt.Errorf("source.url: %w", err)
	}

	return &source.HTTP{
		URL:     url,
		Timeout: cfg.Source.Timeout.Std(),
		Retries: cfg.Source.Retries,
		Notify: func(err error, wait time.Duration) {
			if handler == nil {
				return
			}
			handler.Handle(events.Event{
				Level:   events.Warn,
				Message: fmt.Sprintf("fetch failed, retrying in %s", wait.Round(time.Millisecond)),
				Error:   err,
			})
		},
	}, nil
}
