package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/school-portal/internal/events"
)

func TestDispatcher_DeliversToSubscribers(t *testing.T) {
	t.Parallel()

	dispatcher := events.NewInMemoryDispatcher()

	var got []events.Event
	dispatcher.Subscribe(events.EventMessagePosted, func(_ context.Context, event events.Event) error {
		got = append(got, event)
		return nil
	})
	dispatcher.Subscribe(events.EventContactChanged, func(_ context.Context, _ events.Event) error {
		t.Error("handler for another event type must not fire")
		return nil
	})

	event := events.Event{ID: "evt-1", Type: events.EventMessagePosted}
	if err := dispatcher.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(got) != 1 || got[0].ID != "evt-1" {
		t.Fatalf("got %+v, want one delivery of evt-1", got)
	}
}

func TestDispatcher_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	t.Parallel()

	dispatcher := events.NewInMemoryDispatcher()

	dispatcher.Subscribe(events.EventUserRegistered, func(_ context.Context, _ events.Event) error {
		return errors.New("first handler failed")
	})
	var delivered bool
	dispatcher.Subscribe(events.EventUserRegistered, func(_ context.Context, _ events.Event) error {
		delivered = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventUserRegistered}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if !delivered {
		t.Fatal("second handler should still run after the first errored")
	}
}
