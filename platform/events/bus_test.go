package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"roofchat_backend/platform/logger"
)

type stubEvent struct {
	BaseEvent
}

func (stubEvent) EventName() string { return "test.stub" }

func TestPublishSurvivesCallerCancellation(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	done := make(chan error, 1)
	bus.Subscribe(stubEvent{}.EventName(), HandlerFunc(func(ctx context.Context, _ Event) error {
		// Simulate slow side work, an SMTP dial or a database write,
		// that starts after the HTTP response has been flushed.
		select {
		case <-ctx.Done():
			done <- ctx.Err()
		case <-time.After(50 * time.Millisecond):
			done <- nil
		}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, stubEvent{BaseEvent: NewBaseEvent()})
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("handler inherited caller cancellation: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}

func TestPublishRecoversPanickingHandler(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	var calls atomic.Int32
	released := make(chan struct{})
	bus.Subscribe(stubEvent{}.EventName(), HandlerFunc(func(context.Context, Event) error {
		panic("boom")
	}))
	bus.Subscribe(stubEvent{}.EventName(), HandlerFunc(func(context.Context, Event) error {
		calls.Add(1)
		close(released)
		return nil
	}))

	bus.Publish(context.Background(), stubEvent{BaseEvent: NewBaseEvent()})

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("second handler never ran")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	failure := errors.New("handler down")
	bus.Subscribe(stubEvent{}.EventName(), HandlerFunc(func(context.Context, Event) error {
		return failure
	}))
	bus.Subscribe(stubEvent{}.EventName(), HandlerFunc(func(context.Context, Event) error {
		return nil
	}))

	err := bus.PublishSync(context.Background(), stubEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, failure) {
		t.Fatalf("PublishSync error = %v, want %v", err, failure)
	}
}
