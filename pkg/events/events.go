package events

type Level uint8

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "event"
	}
}

// Event is a single diagnostic reported while building or deploying.
type Event struct {
	Level   Level
	Step    string // reporting step, if any
	Source  string // word slug, file path or other context
	Message string
	Error   error
}

type Handler interface {
	Handle(event Event)
}
