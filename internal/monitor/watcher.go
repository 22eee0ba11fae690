package monitor

import (
	"sync"
	"sync/atomic"
)

// ProcessWatcher subscribes to process-creation notifications. Implementations
// report subscription failures synchronously from Subscribe as WatchSetup errors.
type ProcessWatcher interface {
	Subscribe(filter Filter, onMatch MatchHandler) (*Handle, error)
	Unsubscribe(h *Handle) error
}

var handleSeq atomic.Uint64

// Handle is one active subscription. Stop is idempotent and safe on a nil handle.
type Handle struct {
	id     uint64
	filter Filter
	stopFn func() error

	once sync.Once
	err  error
	done chan struct{}
}

// NewHandle wraps a subscription whose release is performed by stop
func NewHandle(filter Filter, stop func() error) *Handle {
	return &Handle{
		id:     handleSeq.Add(1),
		filter: filter,
		stopFn: stop,
		done:   make(chan struct{}),
	}
}

// ID is unique per process for the lifetime of the program
func (h *Handle) ID() uint64 {
	if h == nil {
		return 0
	}
	return h.id
}

// Filter returns the filter the subscription was created with
func (h *Handle) Filter() Filter {
	if h == nil {
		return Filter{}
	}
	return h.filter
}

// Active reports whether the subscription is still live
func (h *Handle) Active() bool {
	if h == nil {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Done is closed once the subscription has been released
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Stop releases the subscription. Later calls return the first call's result.
func (h *Handle) Stop() error {
	if h == nil {
		return nil
	}
	h.once.Do(func() {
		if h.stopFn != nil {
			h.err = h.stopFn()
		}
		close(h.done)
	})
	return h.err
}
