//go:build !linux

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

// DefaultWatcherKind is polling where no kernel event source is wired
const DefaultWatcherKind = WatcherPoll

// NewWatcher returns the watcher implementation named by kind
func NewWatcher(kind string, logger *logging.Logger) (ProcessWatcher, error) {
	switch kind {
	case "", WatcherPoll:
		return NewPollWatcher(DefaultPollInterval, nil, logger), nil
	case WatcherNetlink:
		return nil, fmt.Errorf("the %s watcher is only available on Linux", WatcherNetlink)
	default:
		return nil, fmt.Errorf("unknown watcher %q (use %s)", kind, WatcherPoll)
	}
}
