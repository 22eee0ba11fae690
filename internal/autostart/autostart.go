// Package autostart registers the program to run when the user logs in.
package autostart

import (
	"os"
	"path/filepath"

	apperrors "launchhook/internal/errors"
)

// AppName is the name of the login entry
const AppName = "launchhook"

// Registrar manages the login entry
type Registrar interface {
	// Enable registers path to be started at login, replacing any previous entry
	Enable(path string) error
	// Disable removes the entry; removing a missing entry is not an error
	Disable() error
	// Enabled reports whether an entry exists
	Enabled() (bool, error)
}

// Apply brings the login entry in line with enabled
func Apply(r Registrar, enabled bool, path string) error {
	if enabled {
		if path == "" {
			var err error
			if path, err = ExecutablePath(); err != nil {
				return err
			}
		}
		return r.Enable(path)
	}
	return r.Disable()
}

// ExecutablePath returns the resolved path of the running binary
func ExecutablePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", apperrors.Autostart(err, "failed to locate executable")
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
