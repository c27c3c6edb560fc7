package track

import (
	"testing"
	"time"

	"ordertrack/internal/model"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(42)

	evt := SnapshotEvent{ID: "e1", Type: "order.updated", Snapshot: model.OrderSnapshot{OrderID: 42, Status: model.StatusAccepted}}
	b.Publish(42, evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type {
			t.Fatalf("got type %s, want %s", got.Type, evt.Type)
		}
		if got.Snapshot.OrderID != 42 || got.Snapshot.Status != model.StatusAccepted {
			t.Fatalf("bad payload: %+v", got.Snapshot)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(42, ch)
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("channel should be closed after unsubscribe")
		}
	case <-time.After(50 * time.Millisecond):
		// acceptable if already drained and closed
	}
}

func TestBrokerIsolatesOrders(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(42)
	defer b.Unsubscribe(42, ch)

	b.Publish(99, SnapshotEvent{ID: "e1", Type: "order.updated"})
	select {
	case evt := <-ch:
		t.Fatalf("received event for foreign order: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}
