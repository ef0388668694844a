package finnhub

import "sync"

// EventKind identifies a connection event.
type EventKind int

const (
	EventOpen EventKind = iota
	EventMessage
	EventClose
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventMessage:
		return "message"
	case EventClose:
		return "close"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners. Data is set for EventMessage, Err for EventError.
type Event struct {
	Kind EventKind
	Data []byte
	Err  error
}

// Listener handles a single event.
type Listener func(Event)

type registration struct {
	id   uint64
	kind EventKind
	fn   Listener
	once bool
}

// listeners is an ordered registry of event callbacks.
type listeners struct {
	mu     sync.Mutex
	nextID uint64
	regs   []registration
}

func (l *listeners) add(kind EventKind, fn Listener, once bool) func() {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.regs = append(l.regs, registration{id: id, kind: kind, fn: fn, once: once})
	l.mu.Unlock()

	return func() { l.remove(id) }
}

func (l *listeners) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, r := range l.regs {
		if r.id == id {
			l.regs = append(l.regs[:i:i], l.regs[i+1:]...)
			return
		}
	}
}

// emit calls every listener of ev.Kind in registration order. One-shot
// listeners are dropped from the registry before they run.
func (l *listeners) emit(ev Event) {
	l.mu.Lock()
	var fire []Listener
	kept := l.regs[:0:0]
	for _, r := range l.regs {
		if r.kind == ev.Kind {
			fire = append(fire, r.fn)
			if r.once {
				continue
			}
		}
		kept = append(kept, r)
	}
	l.regs = kept
	l.mu.Unlock()

	for _, fn := range fire {
		fn(ev)
	}
}

func (l *listeners) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.regs)
}
