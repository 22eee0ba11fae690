package monitor

import (
	"errors"
	"time"

	apperrors "launchhook/internal/errors"
	"launchhook/internal/logging"
)

// DefaultPollInterval is how often the polling watcher takes a snapshot
const DefaultPollInterval = time.Second

// Lister enumerates running processes. Entries that cannot be read are skipped
// by the lister rather than failing the whole listing.
type Lister func() ([]ProcessInfo, error)

// PollWatcher detects process creation by diffing periodic process snapshots.
// A process counts as created when its PID was absent from the previous snapshot.
type PollWatcher struct {
	Interval time.Duration

	list   Lister
	logger *logging.Logger
}

// NewPollWatcher creates a polling watcher. A nil lister uses ListProcesses.
func NewPollWatcher(interval time.Duration, list Lister, logger *logging.Logger) *PollWatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if list == nil {
		list = ListProcesses
	}
	if logger == nil {
		logger = logging.NewLogger("[watch]", false)
	}
	return &PollWatcher{Interval: interval, list: list, logger: logger}
}

// Subscribe takes the baseline snapshot synchronously, so an enumeration failure
// at this point is reported as a WatchSetup error. Later failures are logged and
// the watch keeps running.
func (w *PollWatcher) Subscribe(filter Filter, onMatch MatchHandler) (*Handle, error) {
	if !filter.Valid() {
		return nil, apperrors.WatchSetup(errors.New("empty target name"), "invalid filter")
	}
	if onMatch == nil {
		return nil, apperrors.WatchSetup(errors.New("nil match handler"), "invalid subscription")
	}

	baseline, err := w.list()
	if err != nil {
		return nil, apperrors.WatchSetup(err, "failed to list processes")
	}

	stopCh := make(chan struct{})
	finished := make(chan struct{})
	h := NewHandle(filter, func() error {
		close(stopCh)
		<-finished
		return nil
	})

	log := w.logger.With("watch", h.ID(), "target", filter.Image())
	log.Infof("Watching for %s every %s", filter.Image(), w.Interval)

	go func() {
		defer close(finished)
		w.poll(pidSet(baseline), filter, onMatch, stopCh, log)
	}()

	return h, nil
}

// Unsubscribe stops h; nil and already stopped handles are ignored
func (w *PollWatcher) Unsubscribe(h *Handle) error {
	return h.Stop()
}

func (w *PollWatcher) poll(known map[int]struct{}, filter Filter, onMatch MatchHandler, stopCh <-chan struct{}, log *logging.Logger) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		procs, err := w.list()
		if err != nil {
			log.Warnf("Failed to list processes: %v", err)
			continue
		}

		for _, p := range procs {
			if _, seen := known[p.PID]; seen {
				continue
			}
			if filter.Matches(p.Name) {
				log.Debugf("Process %s started (PID: %d)", p.Name, p.PID)
				onMatch(Event{PID: p.PID, Name: p.Name, Path: p.Command, Time: time.Now()})
			}
		}
		known = pidSet(procs)
	}
}

func pidSet(procs []ProcessInfo) map[int]struct{} {
	set := make(map[int]struct{}, len(procs))
	for _, p := range procs {
		set[p.PID] = struct{}{}
	}
	return set
}
