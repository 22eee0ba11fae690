// Package status carries the human-readable status surface of the monitor.
package status

import (
	"sync"
	"time"

	"launchhook/internal/logging"
)

// Kind names the transition a status describes
type Kind string

// Status kinds
const (
	KindSelectionChanged Kind = "SELECTION_CHANGED"
	KindMonitorStarted   Kind = "MONITOR_STARTED"
	KindMonitorStopped   Kind = "MONITOR_STOPPED"
	KindDispatchStarted  Kind = "DISPATCH_STARTED"
	KindDispatchSent     Kind = "DISPATCH_SENT"
	KindError            Kind = "ERROR"
)

// DefaultHistory is how many statuses a Reporter keeps in memory
const DefaultHistory = 50

// Status is one entry on the status surface
type Status struct {
	Time       time.Time
	Kind       Kind
	Message    string
	Detail     string // e.g. the callback response body
	App        string
	PID        int
	DispatchID string
}

func (s Status) String() string {
	return s.Message
}

// Listener receives every reported status
type Listener func(Status)

// Reporter fans statuses out to listeners and remembers the most recent ones.
// Nothing is persisted.
type Reporter struct {
	logger    *logging.Logger
	mu        sync.RWMutex
	history   []Status
	max       int
	listeners []Listener
}

// NewReporter creates a reporter that also logs every status
func NewReporter(logger *logging.Logger) *Reporter {
	if logger == nil {
		logger = logging.DefaultLogger
		if logger == nil {
			logger = logging.NewLogger("[status]", false)
		}
	}
	return &Reporter{logger: logger, max: DefaultHistory}
}

// Subscribe registers a listener. Listeners run synchronously on the reporting
// goroutine and must hand work off if they block.
func (r *Reporter) Subscribe(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Report publishes a status built from kind and message
func (r *Reporter) Report(kind Kind, message string) Status {
	return r.Publish(Status{Kind: kind, Message: message})
}

// Publish records s, logs it and notifies listeners
func (r *Reporter) Publish(s Status) Status {
	if s.Time.IsZero() {
		s.Time = time.Now()
	}

	r.mu.Lock()
	r.history = append(r.history, s)
	if len(r.history) > r.max {
		r.history = r.history[len(r.history)-r.max:]
	}
	listeners := make([]Listener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	if s.Kind == KindError {
		r.logger.Warnf("%s", s.Message)
	} else {
		r.logger.Infof("%s", s.Message)
	}

	for _, l := range listeners {
		l(s)
	}
	return s
}

// Last returns the most recent status and whether there is one
func (r *Reporter) Last() (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.history) == 0 {
		return Status{}, false
	}
	return r.history[len(r.history)-1], true
}

// Recent returns up to n of the latest statuses, oldest first
func (r *Reporter) Recent(n int) []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n <= 0 || n > len(r.history) {
		n = len(r.history)
	}
	out := make([]Status, n)
	copy(out, r.history[len(r.history)-n:])
	return out
}
