package internal

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/olimci/guffipedia/pkg/deploy"
)

type progressMsg deploy.Progress

type doneMsg struct{ err error }

type uploadModel struct {
	spinner  spinner.Model
	progress deploy.Progress
	err      error
	done     bool
}

func (m uploadModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m uploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch x := msg.(type) {
	case tea.KeyMsg:
		if x.String() == "ctrl+c" {
			m.err = context.Canceled
			return m, tea.Quit
		}
	case progressMsg:
		m.progress = deploy.Progress(x)
		return m, nil
	case doneMsg:
		m.done = true
		m.err = x.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(x)
		return m, cmd
	}
	return m, nil
}

func (m uploadModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), DescribeProgress(m.progress))
}

// DescribeProgress formats an upload progress report.
func DescribeProgress(p deploy.Progress) string {
	return fmt.Sprintf("Uploaded %d/%d files (%s)", p.Done, p.Total, humanize.Bytes(uint64(p.Bytes)))
}

// Spin runs fn behind a terminal spinner fed by its progress reports. Pressing
// ctrl+c cancels the context given to fn.
func Spin(ctx context.Context, fn func(ctx context.Context, report func(deploy.Progress)) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = busyStyle

	program := tea.NewProgram(uploadModel{spinner: s}, tea.WithContext(ctx))

	result := make(chan error, 1)
	go func() {
		err := fn(ctx, func(p deploy.Progress) {
			program.Send(progressMsg(p))
		})
		result <- err
		program.Send(doneMsg{err: err})
	}()

	final, runErr := program.Run()
	if m, ok := final.(uploadModel); ok && !m.done {
		cancel()
	}

	err := <-result
	if err != nil {
		return err
	}
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}
