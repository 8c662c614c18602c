package kernel

import "time"

// EventType names one kind of kernel event, mirroring the teacher's
// KernelEventType but scoped to MissionRPC's own lifecycle instead of the
// agent-process one.
type EventType string

const (
	EventContinuationCreated EventType = "continuation.created"
	EventContinuationYielded EventType = "continuation.yielded"
	EventContinuationDone    EventType = "continuation.done"
	EventClientConnected     EventType = "client.connected"
	EventClientDisconnected  EventType = "client.disconnected"
	EventServiceRegistered   EventType = "service.registered"
)

// Event is one occurrence on the kernel event stream. Data carries
// type-specific detail (continuation id, client id, service name, ...).
type Event struct {
	Type      EventType
	Timestamp time.Time
	ClientID  string
	Data      map[string]any
}

// EventHandler receives kernel events. Handlers run synchronously on the
// emitting goroutine, matching the teacher's OnEvent/emitEvent contract —
// a slow handler is the caller's problem to fix, not the kernel's to guard.
type EventHandler func(Event)

type eventBus struct {
	handlers []EventHandler
}

func (b *eventBus) on(h EventHandler) {
	b.handlers = append(b.handlers, h)
}

func (b *eventBus) emit(evt Event) {
	for _, h := range b.handlers {
		h(evt)
	}
}

func newEvent(typ EventType, clientID string, data map[string]any) Event {
	return Event{Type: typ, Timestamp: time.Now(), ClientID: clientID, Data: data}
}
