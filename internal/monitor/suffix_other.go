//go:build !windows

package monitor

// ExecutableSuffix is appended to target names that lack it
const ExecutableSuffix = ""
