package track

import (
	"sync"

	"ordertrack/internal/model"
)

// SnapshotEvent is published to observers every time a merge changes
// the tracked snapshot.
type SnapshotEvent struct {
	ID       string              `json:"id"`
	Type     string              `json:"type"` // order.updated, order.terminal
	Snapshot model.OrderSnapshot `json:"snapshot"`
}

// EventBroker fans merged snapshots out to the rest of the application.
type EventBroker interface {
	Subscribe(orderID int64) chan SnapshotEvent
	Unsubscribe(orderID int64, ch chan SnapshotEvent)
	Publish(orderID int64, evt SnapshotEvent)
}

// Broker is the in-memory EventBroker used when no REDIS_URL is set.
type Broker struct {
	mu   sync.Mutex
	subs map[int64]map[chan SnapshotEvent]struct{} // orderID -> set of channels
}

func NewBroker() *Broker {
	return &Broker{subs: map[int64]map[chan SnapshotEvent]struct{}{}}
}

func (b *Broker) Subscribe(orderID int64) chan SnapshotEvent {
	ch := make(chan SnapshotEvent, 8)
	b.mu.Lock()
	if b.subs[orderID] == nil {
		b.subs[orderID] = map[chan SnapshotEvent]struct{}{}
	}
	b.subs[orderID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(orderID int64, ch chan SnapshotEvent) {
	b.mu.Lock()
	if m := b.subs[orderID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, orderID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

func (b *Broker) Publish(orderID int64, evt SnapshotEvent) {
	b.mu.Lock()
	m := b.subs[orderID]
	for ch := range m {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
