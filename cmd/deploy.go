package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/olimci/guffipedia/cmd/internal"
	"github.com/olimci/guffipedia/pkg/build"
	"github.com/olimci/guffipedia/pkg/config"
	"github.com/olimci/guffipedia/pkg/deploy"
	"github.com/olimci/guffipedia/pkg/events"
	"github.com/urfave/cli/v3"
)

var ErrNothingToDeploy = errors.New("nothing to deploy")

var (
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#89dceb"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af"))
	tickStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
)

func runDeploy(ctx context.Context, cmd *cli.Command) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "deploy"})
	handler := events.LogHandler(logger)

	opts, err := buildOptions(ctx, cmd, handler)
	if err != nil {
		return err
	}
	cfg, err := build.LoadConfig(opts.ConfigPath, handler)
	if err != nil {
		return err
	}

	dist := build.OutputDir(cfg, opts)
	if info, err := os.Stat(dist); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s does not exist, run guffipedia build first", ErrNothingToDeploy, dist)
	}

	repo, err := deploy.Discover(build.ProjectRoot(opts), cfg.Deploy.Repo)
	if err != nil {
		return err
	}
	target, err := deploy.Resolve(cfg.Deploy, repo)
	if err != nil {
		return err
	}

	fsys := os.DirFS(dist)
	files, err := deploy.List(fsys, target, cfg.Deploy)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrNothingToDeploy, dist)
	}

	printPlan(dist, target, files)

	if cmd.Bool("dry-run") {
		for _, f := range files {
			fmt.Printf("  %s  %s  %s\n", f.Key, f.CacheControl, f.ContentType)
		}
		return nil
	}

	if !cmd.Bool("confirm") {
		ok := false
		err := huh.NewConfirm().
			Title("Continue?").
			Affirmative("Upload").
			Negative("Cancel").
			Value(&ok).
			Run()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	return upload(ctx, cfg, fsys, target, files, handler, logger)
}

func printPlan(dist string, target deploy.Target, files []deploy.File) {
	var size int64
	for _, f := range files {
		size += f.Size
	}

	local := dist
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, dist); err == nil && !strings.HasPrefix(rel, "..") {
			local = rel
		}
	}

	fmt.Println(headingStyle.Render("\nTo sync:"))
	fmt.Printf("  Local directory: %s\n", valueStyle.Render(local))
	fmt.Printf("  S3 Bucket: %s\n", valueStyle.Render(target.Bucket))
	fmt.Printf("  Remote prefix: %s\n", valueStyle.Render(target.Prefix))
	fmt.Printf("  Files: %s\n\n", valueStyle.Render(fmt.Sprintf("%d (%s)", len(files), humanize.Bytes(uint64(size)))))
}

func upload(ctx context.Context, cfg *config.Config, fsys fs.FS, target deploy.Target, files []deploy.File, handler events.Handler, logger *log.Logger) error {
	client, err := deploy.NewClient(ctx, target.Region)
	if err != nil {
		return err
	}

	uploader := &deploy.Uploader{
		Client:      client,
		Concurrency: cfg.Deploy.Concurrency,
		Events:      handler,
	}

	var result deploy.Progress
	run := func(ctx context.Context, report func(deploy.Progress)) error {
		uploader.OnProgress = report
		var uerr error
		result, uerr = uploader.Upload(ctx, fsys, target.Bucket, files)
		return uerr
	}

	if isatty.IsTerminal(os.Stdout.Fd()) {
		err = internal.Spin(ctx, run)
	} else {
		err = run(ctx, func(p deploy.Progress) {
			if p.Done == p.Total || p.Done%50 == 0 {
				logger.Info(internal.DescribeProgress(p))
			}
		})
	}
	if err != nil {
		logger.Error("failed to upload", "err", err)
		return err
	}

	fmt.Printf("%s Uploaded %d files (%s).\n", tickStyle.Render("✔"), result.Done, humanize.Bytes(uint64(result.Bytes)))
	fmt.Println(headingStyle.Render("\n  " + target.WebsiteURL()))
	return nil
}
