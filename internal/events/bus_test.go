package events_test

import (
	"testing"

	"talentpipe/internal/events"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := events.NewBus(4)
	first := bus.Subscribe()
	second := bus.Subscribe()
	defer first.Cancel()
	defer second.Cancel()

	bus.Publish(events.Event{Type: events.TypeAssignmentCreated, TAID: "ta-1"})

	for _, sub := range []*events.Subscription{first, second} {
		select {
		case event := <-sub.Events():
			if event.Type != events.TypeAssignmentCreated || event.TAID != "ta-1" {
				t.Fatalf("unexpected event: %#v", event)
			}
			if event.At.IsZero() {
				t.Fatal("expected publish timestamp")
			}
		default:
			t.Fatal("expected buffered event")
		}
	}
}

func TestSlowSubscriberDropsOldest(t *testing.T) {
	bus := events.NewBus(2)
	sub := bus.Subscribe()
	defer sub.Cancel()

	bus.Publish(events.Event{Type: events.TypePipelineSaved, RoleID: "r1"})
	bus.Publish(events.Event{Type: events.TypePipelineSaved, RoleID: "r2"})
	bus.Publish(events.Event{Type: events.TypePipelineSaved, RoleID: "r3"})

	got := make([]string, 0, 2)
	for {
		select {
		case event := <-sub.Events():
			got = append(got, event.RoleID)
			continue
		default:
		}
		break
	}
	if len(got) != 2 || got[0] != "r2" || got[1] != "r3" {
		t.Fatalf("expected oldest event dropped, got %v", got)
	}
}

func TestCancelClosesChannel(t *testing.T) {
	bus := events.NewBus(0)
	sub := bus.Subscribe()
	sub.Cancel()

	if _, ok := <-sub.Events(); ok {
		t.Fatal("expected closed channel after cancel")
	}
	if bus.SubscriberCount() != 0 {
		t.Fatalf("expected no subscribers, got %d", bus.SubscriberCount())
	}

	// Publishing with no subscribers must not panic.
	bus.Publish(events.Event{Type: events.TypeWorkloadAlert})
}
