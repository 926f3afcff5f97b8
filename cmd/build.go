package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olimci/guffipedia/pkg/build"
	"github.com/olimci/guffipedia/pkg/config"
	"github.com/olimci/guffipedia/pkg/events"
	"github.com/urfave/cli/v3"
)

// buildOptions turns the shared flags into build options.
func buildOptions(ctx context.Context, cmd *cli.Command, handler events.Handler) (*config.Options, error) {
	configPath, err := filepath.Abs(strings.TrimSpace(cmd.String("config")))
	if err != nil {
		return nil, err
	}

	opts := config.DefaultOptions().
		WithContext(ctx).
		WithConfig(configPath).
		WithEventHandler(handler)

	if dist := strings.TrimSpace(cmd.String("dist")); dist != "" {
		abs, err := filepath.Abs(dist)
		if err != nil {
			return nil, err
		}
		opts.WithOutput(abs)
	}
	if cmd.Bool("strict") {
		opts.WithFailOnWarn()
	}

	return opts, nil
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	env, err := config.ParseEnv(cmd.String("env"))
	if err != nil {
		return err
	}

	printer := newLogPrinter(buildOutputRich, os.Stderr, events.Info)
	opts, err := buildOptions(ctx, cmd, printer)
	if err != nil {
		return err
	}
	opts.WithEnv(env)

	start := time.Now()
	cfg, err := build.Run(build.Site(), opts)
	if err != nil {
		return err
	}

	fmt.Printf("OK  built %s in %s -> %s\n",
		env,
		time.Since(start).Truncate(time.Millisecond),
		build.OutputDir(cfg, opts))

	return nil
}

// runFetch refreshes the data files without touching dist.
func runFetch(ctx context.Context, cmd *cli.Command) error {
	printer := newLogPrinter(buildOutputRich, os.Stderr, events.Info)
	opts, err := buildOptions(ctx, cmd, printer)
	if err != nil {
		return err
	}

	start := time.Now()
	cfg, err := build.Run(build.Data(), opts)
	if err != nil {
		return err
	}

	dataDir := cfg.Build.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(build.ProjectRoot(opts), dataDir)
	}
	fmt.Printf("OK  fetched in %s -> %s\n", time.Since(start).Truncate(time.Millisecond), dataDir)

	return nil
}
