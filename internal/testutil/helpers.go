package testutil

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"launchhook/internal/config"
	"launchhook/internal/logging"
	"launchhook/internal/monitor"
)

// SetupTestLogger creates a logger for testing
func SetupTestLogger() *logging.Logger {
	return logging.NewLogger("[test]", true)
}

// SetupTestConfig returns the default record pointed at url, watching target
func SetupTestConfig(url, target string) *config.Config {
	cfg := config.Default()
	cfg.URL = url
	cfg.TargetProcessName = target
	return cfg
}

// WriteTestConfig saves cfg into a fresh temp dir and returns its path
func WriteTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := config.SaveConfig(cfg, path); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

// ClosedServerURL returns an http URL on a local port nothing listens on
func ClosedServerURL(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve a port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return "http://" + addr + "/hook"
}

// WaitForEvent receives one event from ch or fails the test after timeout
func WaitForEvent(t *testing.T, ch <-chan monitor.Event, timeout time.Duration) monitor.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("Timed out after %s waiting for process event", timeout)
		return monitor.Event{}
	}
}

// Eventually polls cond until it holds or fails the test after timeout
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Condition not met within %s: %s", timeout, msg)
}
