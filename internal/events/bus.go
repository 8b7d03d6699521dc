package events

import (
	"sync"
	"time"
)

// Type enumerates the dashboard-visible event kinds.
type Type string

const (
	TypePipelineSaved           Type = "pipeline_saved"
	TypeTemplateSaved           Type = "template_saved"
	TypeAssignmentCreated       Type = "assignment_created"
	TypeAssignmentStatusChanged Type = "assignment_status_changed"
	TypeCollaborationFormed     Type = "collaboration_formed"
	TypeWorkloadAlert           Type = "workload_alert"
)

// Event is a notification published after a successful mutation. Consumers
// treat it as a cue to re-derive whatever view they maintain; it carries
// identifiers, not payloads.
type Event struct {
	Type         Type
	RoleID       string
	TAID         string
	AssignmentID string
	Detail       string
	At           time.Time
}

const defaultSubscriberBuffer = 16

// Bus fans mutation events out to subscribers. Delivery is non-blocking: when
// a subscriber's buffer is full the oldest event is dropped so a slow
// dashboard consumer can never stall the engine.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	buffer int
}

// NewBus creates a bus with the given per-subscriber buffer size.
// A non-positive buffer falls back to the default.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Bus{
		subs:   make(map[int]chan Event),
		buffer: buffer,
	}
}

// Subscription is one consumer's handle on the bus.
type Subscription struct {
	id  int
	ch  chan Event
	bus *Bus
}

// Events returns the subscriber's receive channel.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Cancel removes the subscription and closes its channel.
func (s *Subscription) Cancel() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if _, ok := s.bus.subs[s.id]; ok {
		delete(s.bus.subs, s.id)
		close(s.ch)
	}
	s.bus = nil
}

// Subscribe registers a new consumer.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch
	return &Subscription{id: id, ch: ch, bus: b}
}

// Publish delivers an event to every subscriber without blocking. The event
// timestamp is filled in when unset.
func (b *Bus) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		for {
			select {
			case ch <- event:
			default:
				// Buffer full: drop the oldest event and retry once.
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// SubscriberCount reports how many consumers are attached.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
