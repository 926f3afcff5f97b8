package events

import (
	"fmt"
	"strings"
)

type Summary struct {
	WarnCount  int
	ErrorCount int

	Errors []Event

	Full []Event
}

// Counts returns a short "2 errors, 1 warn" style description, or "" when
// nothing noteworthy was reported.
func (s Summary) Counts() string {
	var parts []string
	if s.ErrorCount > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", s.ErrorCount, plural(s.ErrorCount, "error")))
	}
	if s.WarnCount > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", s.WarnCount, plural(s.WarnCount, "warning")))
	}
	return strings.Join(parts, ", ")
}

func (s Summary) String() string {
	lines := make([]string, len(s.Errors))
	for i, event := range s.Errors {
		lines[i] = "- " + Format(event)
	}

	return fmt.Sprintf("Errors (%d):\n%s", s.ErrorCount, strings.Join(lines, "\n"))
}

// Format renders an event as a single plain line.
func Format(event Event) string {
	var b strings.Builder

	if event.Step != "" {
		b.WriteString("[")
		b.WriteString(event.Step)
		b.WriteString("] ")
	}
	if event.Source != "" {
		b.WriteString(event.Source)
		b.WriteString(": ")
	}
	b.WriteString(event.Message)
	if event.Error != nil {
		b.WriteString(": ")
		b.WriteString(event.Error.Error())
	}

	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
