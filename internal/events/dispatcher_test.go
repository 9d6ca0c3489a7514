package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishInvokesSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string
	d.Subscribe(EventJobCreated, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventJobCreated, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventJobDeleted, func(_ context.Context, e Event) error {
		got = append(got, "deleted")
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventJobCreated, SubjectID: "j1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got) != 2 || got[0] != "first:j1" || got[1] != "second:j1" {
		t.Fatalf("unexpected calls %v", got)
	}
}

func TestPublishContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	called := false
	d.Subscribe(EventJobUpdated, func(context.Context, Event) error { return boom })
	d.Subscribe(EventJobUpdated, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventJobUpdated})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !called {
		t.Fatal("second handler was skipped")
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	if err := NewInMemoryDispatcher().Publish(context.Background(), Event{Type: EventUserRegistered}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
