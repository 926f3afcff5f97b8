package internal

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/olimci/guffipedia/pkg/steps"
	"github.com/olimci/guffipedia/pkg/watcher"
)

type DevServer struct {
	builder *Builder
	server  *Server
	watcher *watcher.Watcher
	ui      *UI
}

type DevServerConfig struct {
	ConfigPath string
	DistDir    string
	Port       int
	Debounce   time.Duration
	NoUI       bool
}

func NewDevServer(config DevServerConfig) (*DevServer, error) {
	builder, err := NewBuilder(config.ConfigPath, config.DistDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create builder: %w", err)
	}

	server := NewServer(ServerConfig{
		DistDir: builder.OutputDir(),
		Port:    config.Port,
	})

	w, err := watcher.New(builder.ConfigPath(), config.Debounce, ignoredPaths(builder)...)
	if err != nil {
		return nil, err
	}

	return &DevServer{
		builder: builder,
		server:  server,
		watcher: w,
		ui:      NewUI(!config.NoUI),
	}, nil
}

// ignoredPaths lists the files builds write inside the project: the output
// directory and the data files. Watching them would rebuild forever, since
// every build picks a new random home word.
func ignoredPaths(b *Builder) []string {
	root := filepath.Dir(b.ConfigPath())
	cfg := b.Config()

	var out []string
	if rel, ok := relTo(root, b.OutputDir()); ok {
		out = append(out, rel, rel+"/**")
	}

	dataDir := cfg.Build.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(root, dataDir)
	}
	if rel, ok := relTo(root, dataDir); ok {
		out = append(out, path.Join(rel, steps.WordsFile), path.Join(rel, steps.HomeWordsFile))
	}

	return out
}

func relTo(root, p string) (string, bool) {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (ds *DevServer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	baseURL, err := ds.server.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	if err := ds.watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	buildRequests := make(chan BuildRequest, 10)
	buildResults := make(chan BuildResult, 10)
	uiEvents := make(chan tea.Msg, 10)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		ds.buildWorker(ctx, buildRequests, buildResults, uiEvents)
	}()

	buildRequests <- BuildRequest{Reason: "initial"}

	if ds.ui.IsInteractive() {
		return ds.runWithUI(ctx, cancel, baseURL, buildRequests, buildResults, uiEvents, &wg)
	}
	return ds.runWithoutUI(ctx, baseURL, buildRequests, buildResults, uiEvents, &wg)
}

func (ds *DevServer) runWithUI(ctx context.Context, cancel context.CancelFunc, baseURL string, buildRequests chan<- BuildRequest, buildResults <-chan BuildResult, uiEvents <-chan tea.Msg, wg *sync.WaitGroup) error {
	model := ds.ui.NewModel(baseURL, buildRequests)
	program := tea.NewProgram(model)

	done := make(chan struct{})
	var runErr error

	go func() {
		defer close(done)
		_, runErr = program.Run()
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-ds.watcher.Events:
				select {
				case buildRequests <- BuildRequest{Reason: event.Reason, Paths: event.Paths}:
				default:
					program.Send(logMsg("rebuild skipped: request queue full"))
				}
			case err := <-ds.watcher.Errors:
				program.Send(logMsg(fmt.Sprintf("watch error: %v", err)))
			case msg := <-uiEvents:
				program.Send(msg)
			case result := <-buildResults:
				program.Send(ds.ui.BuildResultToMsg(result))
			}
		}
	}()

	select {
	case <-done:
		cancel()
		wg.Wait()
		return runErr
	case <-ctx.Done():
		program.Quit()
		<-done
		wg.Wait()
		return ctx.Err()
	}
}

func (ds *DevServer) runWithoutUI(ctx context.Context, baseURL string, buildRequests chan<- BuildRequest, buildResults <-chan BuildResult, uiEvents <-chan tea.Msg, wg *sync.WaitGroup) error {
	log.Info("guffipedia dev server started", "url", baseURL)

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()

		case event := <-ds.watcher.Events:
			select {
			case buildRequests <- BuildRequest{Reason: event.Reason, Paths: event.Paths}:
			default:
				log.Warn("rebuild skipped: request queue full")
			}

		case err := <-ds.watcher.Errors:
			log.Error("watch error", "err", err)

		case result := <-buildResults:
			ds.ui.PrintMsg(ds.ui.BuildResultToMsg(result))

		case msg := <-uiEvents:
			ds.ui.PrintMsg(msg)
		}
	}
}

// buildWorker runs builds one at a time. Failed builds still reload the
// browser, which then shows the failure page.
func (ds *DevServer) buildWorker(ctx context.Context, requests <-chan BuildRequest, results chan<- BuildResult, msgs chan<- tea.Msg) {
	buildCount := 0

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-requests:
			buildCount++

			select {
			case msgs <- BuildStartedMsg{Reason: req.Reason, Number: buildCount}:
			default:
			}

			result := ds.builder.Build(ctx, req.Refetch)
			if errors.Is(result.Error, context.Canceled) {
				return
			}
			result.Reason = req.Reason
			result.Paths = req.Paths
			result.Number = buildCount

			ds.server.Reload()

			select {
			case results <- result:
			default:
			}
		}
	}
}

func (ds *DevServer) Close() error {
	var errs []error

	if err := ds.watcher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("watcher close: %w", err))
	}

	if err := ds.server.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	return errors.Join(errs...)
}

type BuildRequest struct {
	Reason  string
	Paths   []string
	Refetch bool
}

type BuildStartedMsg struct {
	Reason string
	Number int
}
