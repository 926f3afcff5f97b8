package events

// HandlerFunc adapts a plain function to a Handler.
type HandlerFunc func(event Event)

func (h HandlerFunc) Handle(event Event) {
	h(event)
}

// Multi fans an event out to several handlers in order.
func Multi(handlers ...Handler) Handler {
	return HandlerFunc(func(event Event) {
		for _, h := range handlers {
			if h != nil {
				h.Handle(event)
			}
		}
	})
}

type NoopHandler struct{}

func (NoopHandler) Handle(Event) {}
