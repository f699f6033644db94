package segment

import "github.com/wippyai/mswasm-runtime/handle"

// EventType identifies a segment lifecycle event.
type EventType uint8

const (
	EventAllocated EventType = iota
	EventFreed
)

func (t EventType) String() string {
	switch t {
	case EventAllocated:
		return "allocated"
	case EventFreed:
		return "freed"
	default:
		return "unknown"
	}
}

// Event describes one allocation or free.
type Event struct {
	Handle handle.Handle
	Size   uint32
	Type   EventType
}

// Observer receives segment lifecycle events.
type Observer interface {
	OnSegmentEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnSegmentEvent(e Event) { f(e) }

type subscription struct {
	observer Observer
	id       uint64
}
