package watcher

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	var calls int32

	for i := 0; i < 10; i++ {
		d.Trigger(func() { atomic.AddInt32(&calls, 1) })
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(60 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly one call after a burst, got %d", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := newDebouncer(15 * time.Millisecond)
	var called int32

	d.Trigger(func() { atomic.StoreInt32(&called, 1) })
	if !d.IsActive() {
		t.Fatal("expected debouncer to be active right after Trigger")
	}
	d.Cancel()

	time.Sleep(40 * time.Millisecond)

	if atomic.LoadInt32(&called) != 0 {
		t.Fatal("cancelled debouncer still invoked its function")
	}
	if d.IsActive() {
		t.Fatal("expected debouncer to be inactive after Cancel")
	}
}

func TestDebouncerSequentialTriggersEachFire(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	var calls int32

	for i := 0; i < 3; i++ {
		d.Trigger(func() { atomic.AddInt32(&calls, 1) })
		time.Sleep(30 * time.Millisecond)
	}

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 separate fires, got %d", got)
	}
}
