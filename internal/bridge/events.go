package bridge

// Event names published by the bridge.
const (
	EventStarted    = "op_started"
	EventSuperseded = "op_superseded"
	EventCompleted  = "op_completed"
	EventFailed     = "op_failed"
	EventCancelled  = "op_cancelled"
	EventRejected   = "op_rejected"
	EventStopped    = "stream_stopped"
)

// Event represents an operation lifecycle event.
// Minimal and stable: name, mode, operation id and optional fields.
type Event struct {
	Name      string
	Mode      CallMode
	Operation string
	Fields    map[string]any
}

// EventPublisher receives events from the bridge. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

func outcomeEvent(o Outcome) string {
	switch o {
	case OutcomeCompleted:
		return EventCompleted
	case OutcomeFailed:
		return EventFailed
	case OutcomeRejected:
		return EventRejected
	default:
		return EventCancelled
	}
}
