package events

import (
	"context"
	"errors"
	"testing"
)

func TestBusPublishCallsHandlersInOrder(t *testing.T) {
	bus := NewBus()
	calls := make([]int, 0, 2)

	bus.Subscribe(TeamsGenerated, func(_ context.Context, _ Event) error {
		calls = append(calls, 1)
		return nil
	})
	bus.Subscribe(TeamsGenerated, func(_ context.Context, _ Event) error {
		calls = append(calls, 2)
		return nil
	})

	if err := bus.Publish(context.Background(), Event{Name: TeamsGenerated}); err != nil {
		t.Fatalf("publish returned error: %v", err)
	}

	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Fatalf("unexpected handler call sequence: %+v", calls)
	}
}

func TestBusPublishStopsOnFirstError(t *testing.T) {
	bus := NewBus()
	var calledSecond bool
	expectedErr := errors.New("handler failed")

	bus.Subscribe(ResultSaved, func(_ context.Context, _ Event) error {
		return expectedErr
	})
	bus.Subscribe(ResultSaved, func(_ context.Context, _ Event) error {
		calledSecond = true
		return nil
	})

	err := bus.Publish(context.Background(), Event{Name: ResultSaved})
	if !errors.Is(err, expectedErr) {
		t.Fatalf("expected %v, got %v", expectedErr, err)
	}
	if calledSecond {
		t.Fatalf("expected second handler not to run")
	}
}

func TestBusPublishIgnoresOtherNamesAndNilBus(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(LogReloaded, func(_ context.Context, e Event) error {
		got = append(got, e.Payload.(string))
		return nil
	})

	if err := bus.Publish(context.Background(), Event{Name: RoundAdded, Payload: "x"}); err != nil {
		t.Fatalf("publish returned error: %v", err)
	}
	if err := bus.Publish(context.Background(), Event{Name: LogReloaded, Payload: "season"}); err != nil {
		t.Fatalf("publish returned error: %v", err)
	}
	if len(got) != 1 || got[0] != "season" {
		t.Fatalf("unexpected deliveries: %v", got)
	}

	var nilBus *Bus
	if err := nilBus.Publish(context.Background(), Event{Name: LogReloaded}); err != nil {
		t.Fatalf("nil bus should drop events, got %v", err)
	}
}
