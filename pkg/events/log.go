package events

import (
	"github.com/charmbracelet/log"
)

// LogHandler writes events to a charmbracelet logger, mapping levels and
// attaching step, source and error as key/value pairs.
func LogHandler(logger *log.Logger) Handler {
	return HandlerFunc(func(event Event) {
		kv := make([]any, 0, 6)
		if event.Step != "" {
			kv = append(kv, "step", event.Step)
		}
		if event.Source != "" {
			kv = append(kv, "source", event.Source)
		}
		if event.Error != nil {
			kv = append(kv, "err", event.Error)
		}

		switch event.Level {
		case Debug:
			logger.Debug(event.Message, kv...)
		case Info:
			logger.Info(event.Message, kv...)
		case Warn:
			logger.Warn(event.Message, kv...)
		default:
			logger.Error(event.Message, kv...)
		}
	})
}
