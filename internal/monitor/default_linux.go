package monitor

import (
	"fmt"

	"launchhook/internal/logging"
)

// Watcher kinds accepted by NewWatcher
const (
	WatcherNetlink = "netlink"
	WatcherPoll    = "poll"
)

// DefaultWatcherKind is the proc connector on Linux
const DefaultWatcherKind = WatcherNetlink

// NewWatcher returns the watcher implementation named by kind
func NewWatcher(kind string, logger *logging.Logger) (ProcessWatcher, error) {
	switch kind {
	case "", WatcherNetlink:
		return NewNetlinkWatcher(logger), nil
	case WatcherPoll:
		return NewPollWatcher(DefaultPollInterval, nil, logger), nil
	default:
		return nil, fmt.Errorf("unknown watcher %q (use %s or %s)", kind, WatcherNetlink, WatcherPoll)
	}
}
