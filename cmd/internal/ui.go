package internal

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/olimci/guffipedia/pkg/events"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fff1e5"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	busyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
)

type UI struct {
	interactive bool
}

func NewUI(interactive bool) *UI {
	return &UI{
		interactive: interactive,
	}
}

func (ui *UI) IsInteractive() bool {
	return ui.interactive
}

func (ui *UI) NewModel(baseURL string, buildRequests chan<- BuildRequest) tea.Model {
	return &model{
		baseURL:       baseURL,
		buildRequests: buildRequests,
		started:       time.Now(),
		maxLines:      14,
	}
}

func (ui *UI) LogEvent(message string) {
	if !ui.interactive {
		log.Print(message)
	}
}

func (ui *UI) BuildResultToMsg(result BuildResult) tea.Msg {
	return buildResultMsg(result)
}

// PrintMsg logs msg when running without the interactive UI.
func (ui *UI) PrintMsg(msg tea.Msg) {
	switch m := msg.(type) {
	case logMsg:
		log.Print(string(m))
	case BuildStartedMsg:
		log.Info("build started", "number", m.Number, "reason", m.Reason)
	case buildResultMsg:
		for _, event := range m.Events {
			logEvent(event)
		}

		kv := []any{"number", m.Number, "took", m.Duration.Truncate(time.Millisecond), "reason", m.Reason}
		if len(m.Paths) > 0 {
			kv = append(kv, "changes", strings.Join(m.Paths, ", "))
		}
		if m.Error != nil {
			log.Error("build failed", append(kv, "err", m.Error)...)
			return
		}
		if summary := summarizeEvents(m.Events); summary != "" {
			kv = append(kv, "events", summary)
		}
		log.Info("build ok", kv...)
	}
}

func logEvent(event events.Event) {
	events.LogHandler(log.Default()).Handle(event)
}

// summarizeEvents returns a human-readable count of events by level.
func summarizeEvents(list []events.Event) string {
	counts := make(map[events.Level]int)
	for _, event := range list {
		counts[event.Level]++
	}

	if len(counts) == 0 {
		return ""
	}

	var parts []string
	for _, level := range []events.Level{events.Error, events.Warn, events.Info, events.Debug} {
		if count := counts[level]; count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count, level))
		}
	}
	return strings.Join(parts, ", ")
}

type model struct {
	baseURL       string
	buildRequests chan<- BuildRequest
	started       time.Time
	maxLines      int

	buildCount  int
	building    bool
	lastReason  string
	lastDur     time.Duration
	lastErr     string
	lastChanged []string

	logs []string
}

type logMsg string

type buildResultMsg BuildResult

func (m model) Init() tea.Cmd {
	return nil
}

func (m *model) request(req BuildRequest) {
	select {
	case m.buildRequests <- req:
		m.appendLog("queued: " + req.Reason)
	default:
		m.appendLog("rebuild skipped: request queue full")
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch x := msg.(type) {
	case tea.KeyMsg:
		switch x.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.request(BuildRequest{Reason: "manual rebuild"})
			return m, nil
		case "f":
			m.request(BuildRequest{Reason: "refetch", Refetch: true})
			return m, nil
		case "c":
			m.logs = nil
			return m, nil
		}

	case logMsg:
		m.appendLog(string(x))
		return m, nil

	case BuildStartedMsg:
		m.building = true
		m.lastReason = x.Reason
		m.buildCount = x.Number
		m.lastErr = ""
		m.lastChanged = nil
		m.appendLog(fmt.Sprintf("build #%d started: %s", x.Number, x.Reason))
		return m, nil

	case buildResultMsg:
		m.building = false
		m.buildCount = x.Number
		m.lastReason = x.Reason
		m.lastDur = x.Duration
		m.lastChanged = x.Paths

		for _, event := range x.Events {
			if event.Level < events.Info {
				continue
			}
			m.appendLog(strings.ToUpper(event.Level.String()) + " " + events.Format(event))
		}

		took := x.Duration.Truncate(time.Millisecond)
		if x.Error != nil {
			m.lastErr = x.Error.Error()
			m.appendLog(errStyle.Render(fmt.Sprintf("ERR  build #%d in %s: %v", x.Number, took, x.Error)))
		} else {
			m.lastErr = ""
			line := fmt.Sprintf("OK   build #%d in %s", x.Number, took)
			if summary := summarizeEvents(x.Events); summary != "" {
				line += " [" + summary + "]"
			}
			m.appendLog(okStyle.Render(line))
		}
		if len(x.Paths) > 0 {
			m.appendLog("changes: " + strings.Join(x.Paths, ", "))
		}
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	status := okStyle.Render("ready")
	if m.building {
		status = busyStyle.Render("building")
	}
	if m.lastErr != "" {
		status = errStyle.Render("error")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s  %s\n", titleStyle.Render("guffipedia dev"), status, m.baseURL))

	switch {
	case m.buildCount == 0 && !m.building:
		b.WriteString("last build: (none yet)\n")
	case m.lastErr != "":
		b.WriteString(fmt.Sprintf("last build: ERR #%d in %s  reason: %s\n", m.buildCount, m.lastDur.Truncate(time.Millisecond), m.lastReason))
	default:
		b.WriteString(fmt.Sprintf("last build: OK #%d in %s  reason: %s\n", m.buildCount, m.lastDur.Truncate(time.Millisecond), m.lastReason))
	}

	if len(m.lastChanged) > 0 {
		b.WriteString("changes:   " + strings.Join(m.lastChanged, ", ") + "\n")
	} else {
		b.WriteString("changes:   (none)\n")
	}

	b.WriteString("\n")
	for _, line := range m.logs {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render("\nkeys: r rebuild   f refetch   c clear   q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *model) appendLog(s string) {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return
	}
	m.logs = append(m.logs, s)
	if len(m.logs) > m.maxLines {
		m.logs = m.logs[len(m.logs)-m.maxLines:]
	}
}
