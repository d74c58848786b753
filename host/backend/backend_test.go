package backend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sm4/canopen"
)

// fakeBus is a minimal Bus double: Receive unblocks either with a
// queued frame or, once closed, with an error, the way a real socket
// read unblocks when its fd is closed out from under it.
type fakeBus struct {
	mu     sync.Mutex
	sent   []canopen.Frame
	closed chan struct{}
}

func newFakeBus() *fakeBus {
	return &fakeBus{closed: make(chan struct{})}
}

func (b *fakeBus) Receive() (canopen.Frame, error) {
	<-b.closed
	return canopen.Frame{}, errBusClosed
}

func (b *fakeBus) Send(f canopen.Frame) error {
	b.mu.Lock()
	b.sent = append(b.sent, f)
	b.mu.Unlock()
	return nil
}

func (b *fakeBus) Close() { close(b.closed) }

var errBusClosed = errors.New("fakeBus: closed")

func TestStartAndShutdownWithNoOptionalWorkers(t *testing.T) {
	bus := newFakeBus()
	b, err := Start(context.Background(), 5, 3200, bus, Options{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- b.Shutdown() }()

	// Mirror.run is blocked in bus.Receive and is not a supervised
	// worker, so Shutdown returns without waiting for it; close the bus
	// the way a real socket close would so that goroutine exits too.
	time.AfterFunc(10*time.Millisecond, bus.Close)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not return within timeout")
	}
}
