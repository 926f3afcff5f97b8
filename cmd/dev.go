package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"

	"github.com/olimci/guffipedia/cmd/internal"
	"github.com/urfave/cli/v3"
)

// runDev starts the development server with file watching and auto-rebuild.
func runDev(ctx context.Context, cmd *cli.Command) error {
	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt)
	defer stopSignals()

	devServer, err := internal.NewDevServer(internal.DevServerConfig{
		ConfigPath: strings.TrimSpace(cmd.String("config")),
		DistDir:    strings.TrimSpace(cmd.String("dist")),
		Port:       cmd.Int("port"),
		Debounce:   cmd.Duration("debounce"),
		NoUI:       cmd.Bool("no-ui"),
	})
	if err != nil {
		return err
	}
	defer devServer.Close()

	if err := devServer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
