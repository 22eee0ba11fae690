package monitor

import "time"

// ProcessInfo describes one running process as shown on the selection surface
type ProcessInfo struct {
	PID     int
	Name    string
	Command string // executable path, when accessible
	Title   string // command line, when accessible
}

// DisplayName renders the entry as "name - title", or just the name when no
// title is known.
func (p ProcessInfo) DisplayName() string {
	if p.Title == "" || p.Title == p.Name {
		return p.Name
	}
	return p.Name + " - " + p.Title
}

// Event is delivered for every process creation that matches a watch filter
type Event struct {
	PID  int
	Name string // image name that matched
	Path string // executable path, empty if it could not be read
	Time time.Time
}

// MatchHandler receives matching events. It is called on the watcher's own
// goroutine and must not block for long.
type MatchHandler func(Event)
