package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventKind names a session state change.
type EventKind string

const (
	EventCartChanged       EventKind = "cart_changed"
	EventTableSwitched     EventKind = "table_switched"
	EventTableClosed       EventKind = "table_closed"
	EventCustomerSelected  EventKind = "customer_selected"
	EventPaymentChanged    EventKind = "payment_changed"
	EventCartHeld          EventKind = "cart_held"
	EventCartRestored      EventKind = "cart_restored"
	EventCheckoutCompleted EventKind = "checkout_completed"
	EventCheckoutFailed    EventKind = "checkout_failed"
	EventDrawerChanged     EventKind = "drawer_changed"
	EventPrintFailed       EventKind = "print_failed"
)

// Event is published after every state-changing operation.
type Event struct {
	Kind      EventKind   `json:"kind"`
	CashierID uuid.UUID   `json:"cashier_id"`
	TableID   uuid.UUID   `json:"table_id,omitempty"`
	Cart      *CartChange `json:"cart,omitempty"`
	Message   string      `json:"message,omitempty"`
	At        time.Time   `json:"at"`
}

// EventBus fans events out to subscribers. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type EventBus struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
	log  *zap.Logger
}

// NewEventBus creates an event bus with no subscribers
func NewEventBus(log *zap.Logger) *EventBus {
	return &EventBus{subs: make(map[int]chan Event), log: log.Named("events")}
}

// Subscribe returns a channel of events and a func that closes it.
func (b *EventBus) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *EventBus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.log.Debug("subscriber lagging, event dropped", zap.Int("subscriber", id), zap.String("kind", string(e.Kind)))
		}
	}
}
