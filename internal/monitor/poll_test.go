package monitor_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "launchhook/internal/errors"
	"launchhook/internal/monitor"
	"launchhook/internal/testutil"
)

// scriptedLister returns the queued snapshots in order, repeating the last one
type scriptedLister struct {
	mu        sync.Mutex
	snapshots [][]monitor.ProcessInfo
	errs      []error
	calls     int
}

func (s *scriptedLister) list() ([]monitor.ProcessInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.snapshots) {
		i = len(s.snapshots) - 1
	}
	return s.snapshots[i], nil
}

func TestPollWatcherReportsNewMatchingProcesses(t *testing.T) {
	lister := &scriptedLister{
		snapshots: [][]monitor.ProcessInfo{
			{{PID: 1, Name: "init"}, {PID: 10, Name: "notepad"}},                                            // baseline
			{{PID: 1, Name: "init"}, {PID: 10, Name: "notepad"}, {PID: 11, Name: "bash"}},                   // no match
			{{PID: 1, Name: "init"}, {PID: 10, Name: "notepad"}, {PID: 12, Name: "Notepad"}},                // match
			{{PID: 1, Name: "init"}, {PID: 12, Name: "Notepad"}, {PID: 13, Name: "notepad", Command: "/x"}}, // match
		},
	}

	w := monitor.NewPollWatcher(5*time.Millisecond, lister.list, testutil.SetupTestLogger())
	events := make(chan monitor.Event, 10)

	h, err := w.Subscribe(monitor.Filter{Target: "notepad"}, func(ev monitor.Event) { events <- ev })
	require.NoError(t, err)
	defer w.Unsubscribe(h)

	first := testutil.WaitForEvent(t, events, time.Second)
	assert.Equal(t, 12, first.PID)
	second := testutil.WaitForEvent(t, events, time.Second)
	assert.Equal(t, 13, second.PID)
	assert.Equal(t, "/x", second.Path)

	require.NoError(t, w.Unsubscribe(h))
	assert.False(t, h.Active())
	assert.NoError(t, w.Unsubscribe(h))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event after unsubscribe: %+v", ev)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestPollWatcherSurvivesListingFailures(t *testing.T) {
	lister := &scriptedLister{
		snapshots: [][]monitor.ProcessInfo{
			{},
			{},
			{},
			{{PID: 5, Name: "target"}},
		},
		errs: []error{nil, errors.New("transient"), errors.New("transient")},
	}

	w := monitor.NewPollWatcher(5*time.Millisecond, lister.list, testutil.SetupTestLogger())
	events := make(chan monitor.Event, 10)
	h, err := w.Subscribe(monitor.Filter{Target: "target"}, func(ev monitor.Event) { events <- ev })
	require.NoError(t, err)
	defer h.Stop()

	ev := testutil.WaitForEvent(t, events, time.Second)
	assert.Equal(t, 5, ev.PID)
}

func TestPollWatcherSetupErrors(t *testing.T) {
	failing := func() ([]monitor.ProcessInfo, error) { return nil, errors.New("no /proc") }
	w := monitor.NewPollWatcher(time.Millisecond, failing, testutil.SetupTestLogger())

	_, err := w.Subscribe(monitor.Filter{Target: "x"}, func(monitor.Event) {})
	assert.ErrorIs(t, err, apperrors.ErrWatchSetup)

	_, err = w.Subscribe(monitor.Filter{Target: ""}, func(monitor.Event) {})
	assert.ErrorIs(t, err, apperrors.ErrWatchSetup)

	_, err = w.Subscribe(monitor.Filter{Target: "x"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrWatchSetup)
}
