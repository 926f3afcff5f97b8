package cmd

import (
	"context"
	"time"

	"github.com/olimci/guffipedia/pkg/version"
	"github.com/urfave/cli/v3"
)

var Version = version.String()

func configFlag() cli.Flag {
	return &cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "guffipedia.toml", Usage: "config file path"}
}

func Execute(ctx context.Context, args []string) error {
	app := &cli.Command{
		Name:  "guffipedia",
		Usage: "Build and publish the Guffipedia dictionary of business jargon",
		Commands: []*cli.Command{
			{
				Name:   "version",
				Usage:  "print version",
				Action: runVersion,
			},
			{
				Name:  "build",
				Usage: "Fetch the words and build the site into a dist directory",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "dist", Aliases: []string{"d"}, Value: "", Usage: "output directory (overrides config)"},
					&cli.BoolFlag{Name: "strict", Aliases: []string{"s"}, Value: false, Usage: "fail on warnings (strict mode)"},
					&cli.StringFlag{Name: "env", Aliases: []string{"e"}, Value: "production", Usage: "build environment (development or production)"},
				},
				Action: runBuild,
			},
			{
				Name:  "fetch",
				Usage: "Fetch the words and write words.json and homewords.json",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{Name: "strict", Aliases: []string{"s"}, Value: false, Usage: "fail on warnings (strict mode)"},
				},
				Action: runFetch,
			},
			{
				Name:  "dev",
				Usage: "Start development server with file watching and auto-rebuild",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "dist", Aliases: []string{"d"}, Value: "", Usage: "directory to serve (overrides config)"},
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 6767, Usage: "HTTP port"},
					&cli.DurationFlag{Name: "debounce", Value: 250 * time.Millisecond, Usage: "debounce window for rebuilds"},
					&cli.BoolFlag{Name: "no-ui", Value: false, Usage: "disable interactive UI and log to stdout only"},
				},
				Action: runDev,
			},
			{
				Name:  "deploy",
				Usage: "Upload the built site to S3",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "dist", Aliases: []string{"d"}, Value: "", Usage: "directory to upload (overrides config)"},
					&cli.BoolFlag{Name: "confirm", Aliases: []string{"y"}, Value: false, Usage: "skip the confirmation prompt"},
					&cli.BoolFlag{Name: "dry-run", Value: false, Usage: "list what would be uploaded without uploading"},
				},
				Action: runDeploy,
			},
		},
	}

	return app.Run(ctx, args)
}
