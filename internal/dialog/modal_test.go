package dialog

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitOpen[P, R any](t *testing.T, m *Modal[P, R]) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for m.State() != Open {
		if time.Now().After(deadline) {
			t.Fatalf("dialog never opened")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestConfirmResolvesOpen(t *testing.T) {
	m := New[[]int, int]()
	result := make(chan Action[int], 1)
	go func() {
		a, err := m.Open(context.Background(), []int{2, 3})
		if err != nil {
			t.Errorf("open: %v", err)
		}
		result <- a
	}()
	waitOpen(t, m)

	payload, ok := m.Payload()
	if !ok || len(payload) != 2 {
		t.Fatalf("unexpected payload %v %v", payload, ok)
	}
	if err := m.Confirm(3); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	a := <-result
	if !a.Confirmed || a.Value != 3 {
		t.Fatalf("unexpected action %+v", a)
	}
	if m.State() != Confirmed {
		t.Fatalf("expected confirmed, got %s", m.State())
	}
	if _, ok := m.Payload(); ok {
		t.Fatalf("payload should clear once resolved")
	}
}

func TestCancelResolvesOpen(t *testing.T) {
	m := New[string, bool]()
	result := make(chan Action[bool], 1)
	go func() {
		a, _ := m.Open(context.Background(), "reset?")
		result <- a
	}()
	waitOpen(t, m)

	if err := m.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if a := <-result; a.Confirmed {
		t.Fatalf("cancelled dialog must not confirm")
	}
	if m.State() != Cancelled {
		t.Fatalf("expected cancelled, got %s", m.State())
	}
}

func TestResolveWhenClosed(t *testing.T) {
	m := New[string, int]()
	if err := m.Confirm(1); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
	if err := m.Cancel(); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
}

func TestOpenTwice(t *testing.T) {
	m := New[string, int]()
	go func() { _, _ = m.Open(context.Background(), "first") }()
	waitOpen(t, m)

	if _, err := m.Open(context.Background(), "second"); !errors.Is(err, ErrAlreadyOpen) {
		t.Fatalf("expected ErrAlreadyOpen, got %v", err)
	}
	if err := m.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}

func TestContextCancelClosesDialog(t *testing.T) {
	m := New[string, int]()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := m.Open(ctx, "teams?")
		errc <- err
	}()
	waitOpen(t, m)
	cancel()

	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if m.State() != Cancelled {
		t.Fatalf("expected cancelled, got %s", m.State())
	}

	// Reopening after a resolution is allowed.
	go func() { _, _ = m.Open(context.Background(), "again") }()
	waitOpen(t, m)
	if err := m.Confirm(2); err != nil {
		t.Fatalf("confirm: %v", err)
	}
}

func TestWaitReturnsPayloadOnceOpen(t *testing.T) {
	m := New[string, int]()
	got := make(chan string, 1)
	go func() {
		p, err := m.Wait(context.Background())
		if err != nil {
			t.Errorf("wait: %v", err)
		}
		got <- p
		_ = m.Confirm(1)
	}()

	a, err := m.Open(context.Background(), "pick")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if p := <-got; p != "pick" || !a.Confirmed {
		t.Fatalf("unexpected wait payload %q / action %+v", p, a)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	m := New[string, int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := m.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
