package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/olimci/guffipedia/pkg/events"
)

type buildOutputStyle int

const (
	buildOutputPlain buildOutputStyle = iota
	buildOutputRich
)

// logPrinter is an events.Handler printing one line per event at or above
// minLevel.
type logPrinter struct {
	style    buildOutputStyle
	out      io.Writer
	minLevel events.Level
	mu       sync.Mutex

	levelStyles map[events.Level]lipgloss.Style
	stepStyle   lipgloss.Style
	sourceStyle lipgloss.Style
}

func newLogPrinter(style buildOutputStyle, out io.Writer, minLevel events.Level) *logPrinter {
	p := &logPrinter{
		style:    style,
		out:      out,
		minLevel: minLevel,
	}

	if style != buildOutputRich {
		return p
	}

	colorEnabled := false
	if f, ok := out.(*os.File); ok {
		colorEnabled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if !colorEnabled {
		return p
	}

	p.levelStyles = map[events.Level]lipgloss.Style{
		events.Debug: lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086")), // muted
		events.Info:  lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")), // blue
		events.Warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af")), // yellow
		events.Error: lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")), // red
	}
	p.stepStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8"))   // grey
	p.sourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4")) // text
	return p
}

func (p *logPrinter) Handle(event events.Event) {
	if event.Level < p.minLevel {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	line := formatLogPlain(event)
	if p.style == buildOutputRich && p.levelStyles != nil {
		if levelStyle, ok := p.levelStyles[event.Level]; ok {
			line = formatLogRich(event, levelStyle.Render(event.Level.String()), p.stepStyle, p.sourceStyle)
		}
	}

	fmt.Fprintln(p.out, line)
}

func formatLogPlain(event events.Event) string {
	return event.Level.String() + " " + events.Format(event)
}

func formatLogRich(event events.Event, levelToken string, stepStyle, sourceStyle lipgloss.Style) string {
	var b strings.Builder

	b.WriteString(levelToken)
	if event.Step != "" {
		b.WriteString(" ")
		b.WriteString(stepStyle.Render("[" + event.Step + "]"))
	}
	b.WriteString(": ")

	if event.Source != "" {
		b.WriteString(sourceStyle.Render(event.Source))
		b.WriteString(": ")
	}

	b.WriteString(event.Message)
	if event.Error != nil {
		b.WriteString(": ")
		b.WriteString(event.Error.Error())
	}

	return b.String()
}
