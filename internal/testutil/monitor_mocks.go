package testutil

import (
	"errors"
	"sync"
	"time"

	"launchhook/internal/monitor"
)

// FakeWatcher implements monitor.ProcessWatcher for testing. Events are injected
// with Emit and delivered on a separate goroutine, like a real notification thread.
type FakeWatcher struct {
	// Behavior controls
	SubscribeErr error

	// Tracking fields
	Subscribed   int
	Unsubscribed int
	Handles      []*monitor.Handle

	active  *monitor.Handle
	handler monitor.MatchHandler
	mu      sync.Mutex
}

// NewFakeWatcher creates a fake watcher with no active subscription
func NewFakeWatcher() *FakeWatcher {
	return &FakeWatcher{}
}

// Subscribe records the subscription. A second live subscription is an error,
// which lets tests catch leaked handles.
func (f *FakeWatcher) Subscribe(filter monitor.Filter, onMatch monitor.MatchHandler) (*monitor.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}
	if f.active.Active() {
		return nil, errors.New("fake watcher: previous subscription still active")
	}

	var h *monitor.Handle
	h = monitor.NewHandle(filter, func() error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.Unsubscribed++
		if f.active == h {
			f.active = nil
			f.handler = nil
		}
		return nil
	})

	f.Subscribed++
	f.Handles = append(f.Handles, h)
	f.active = h
	f.handler = onMatch
	return h, nil
}

// Unsubscribe stops h
func (f *FakeWatcher) Unsubscribe(h *monitor.Handle) error {
	return h.Stop()
}

// Active returns the live handle, or nil
func (f *FakeWatcher) Active() *monitor.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Emit simulates the creation of a process called name. It reports whether the
// active filter matched and the event was delivered.
func (f *FakeWatcher) Emit(name string, pid int) bool {
	f.mu.Lock()
	h, handler := f.active, f.handler
	f.mu.Unlock()

	if h == nil || handler == nil || !h.Filter().Matches(name) {
		return false
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler(monitor.Event{PID: pid, Name: name, Time: time.Now()})
	}()
	<-done
	return true
}

// Handler returns the handler of the active subscription
func (f *FakeWatcher) Handler() monitor.MatchHandler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler
}
