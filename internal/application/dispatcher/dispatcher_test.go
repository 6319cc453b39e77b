package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/antonkh/budget-approval/internal/domain/entity"
	"github.com/antonkh/budget-approval/internal/domain/event"
)

// mockLogger implements Logger for testing
type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func testEvent() *event.Event {
	rec := &entity.ExpenseRecord{ID: 1, Status: entity.StatusNotProcessed}
	return event.NewEvent(event.TypeRecordSubmitted, rec, nil)
}

func TestNewDispatcher(t *testing.T) {
	t.Run("creates dispatcher without logger", func(t *testing.T) {
		d := NewDispatcher()
		if d == nil {
			t.Fatal("expected non-nil dispatcher")
		}
	})

	t.Run("creates dispatcher with logger", func(t *testing.T) {
		logger := &mockLogger{}
		d := NewDispatcher(WithLogger(logger))
		if d == nil {
			t.Fatal("expected non-nil dispatcher")
		}
	})
}

func TestSubscribeNamed(t *testing.T) {
	t.Run("calls subscribed handler", func(t *testing.T) {
		d := NewDispatcher()
		called := false

		d.SubscribeNamed(event.TypeRecordSubmitted, "test-handler", func(ctx context.Context, evt *event.Event) error {
			called = true
			return nil
		})

		if err := d.Dispatch(context.Background(), testEvent()); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}

		if !called {
			t.Error("expected handler to be called")
		}
	})

	t.Run("runs multiple handlers in registration order", func(t *testing.T) {
		d := NewDispatcher()
		var order []string

		d.SubscribeNamed(event.TypeRecordSubmitted, "first", func(ctx context.Context, evt *event.Event) error {
			order = append(order, "first")
			return nil
		})
		d.SubscribeNamed(event.TypeRecordSubmitted, "second", func(ctx context.Context, evt *event.Event) error {
			order = append(order, "second")
			return nil
		})

		if err := d.Dispatch(context.Background(), testEvent()); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}

		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("handler order = %v, want [first second]", order)
		}
	})

	t.Run("does not call handlers for other event types", func(t *testing.T) {
		d := NewDispatcher()
		called := false

		d.SubscribeNamed(event.TypeRecordPaid, "paid-handler", func(ctx context.Context, evt *event.Event) error {
			called = true
			return nil
		})

		if err := d.Dispatch(context.Background(), testEvent()); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}

		if called {
			t.Error("handler for a different event type should not run")
		}
	})
}

func TestDispatch_HandlerError(t *testing.T) {
	d := NewDispatcher()
	secondCalled := false

	d.SubscribeNamed(event.TypeRecordSubmitted, "failing", func(ctx context.Context, evt *event.Event) error {
		return errors.New("boom")
	})
	d.SubscribeNamed(event.TypeRecordSubmitted, "after", func(ctx context.Context, evt *event.Event) error {
		secondCalled = true
		return nil
	})

	err := d.Dispatch(context.Background(), testEvent())
	if err == nil {
		t.Fatal("expected dispatch to return the handler error")
	}

	// Dispatch stops at the first failing handler
	if secondCalled {
		t.Error("handlers after a failure should not run")
	}
}

func TestDispatch_HandlerPanicIsRecovered(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))

	d.SubscribeNamed(event.TypeRecordSubmitted, "panicking", func(ctx context.Context, evt *event.Event) error {
		panic("unexpected")
	})

	err := d.Dispatch(context.Background(), testEvent())
	if err == nil {
		t.Fatal("expected dispatch to surface the panic as an error")
	}

	if logger.ErrorCount() == 0 {
		t.Error("expected the panic to be logged")
	}
}

func TestDispatchAsync(t *testing.T) {
	d := NewDispatcher()
	var calls atomic.Int32
	done := make(chan struct{})

	d.SubscribeNamed(event.TypeRecordSubmitted, "async", func(ctx context.Context, evt *event.Event) error {
		calls.Add(1)
		close(done)
		return nil
	})

	d.DispatchAsync(context.Background(), testEvent())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async handler did not run")
	}

	if calls.Load() != 1 {
		t.Errorf("handler ran %d times, want 1", calls.Load())
	}
}

func TestClose(t *testing.T) {
	d := NewDispatcher()

	if err := d.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	if err := d.Close(); err == nil {
		t.Error("second Close() should fail")
	}

	if err := d.Dispatch(context.Background(), testEvent()); err == nil {
		t.Error("Dispatch() after Close() should fail")
	}
}

func TestClose_WaitsForAsyncHandlers(t *testing.T) {
	d := NewDispatcher()
	var finished atomic.Bool

	d.SubscribeNamed(event.TypeRecordSubmitted, "slow", func(ctx context.Context, evt *event.Event) error {
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	d.DispatchAsync(context.Background(), testEvent())

	if err := d.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	if !finished.Load() {
		t.Error("Close() returned before the async handler finished")
	}
}
