package autostart

import (
	"errors"

	"golang.org/x/sys/windows/registry"

	apperrors "launchhook/internal/errors"
)

const runKey = `Software\Microsoft\Windows\CurrentVersion\Run`

// RegistryRegistrar keeps a value under the current user's Run key
type RegistryRegistrar struct{}

// New returns the registry registrar
func New() (Registrar, error) {
	return &RegistryRegistrar{}, nil
}

// Enable sets the Run value to start path with the run command
func (r *RegistryRegistrar) Enable(path string) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return apperrors.Autostart(err, "failed to open Run key")
	}
	defer key.Close()

	if err := key.SetStringValue(AppName, `"`+path+`" run`); err != nil {
		return apperrors.Autostart(err, "failed to write Run value")
	}
	return nil
}

// Disable deletes the Run value
func (r *RegistryRegistrar) Disable() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return apperrors.Autostart(err, "failed to open Run key")
	}
	defer key.Close()

	if err := key.DeleteValue(AppName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return apperrors.Autostart(err, "failed to delete Run value")
	}
	return nil
}

// Enabled reports whether the Run value exists
func (r *RegistryRegistrar) Enabled() (bool, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.QUERY_VALUE)
	if err != nil {
		return false, apperrors.Autostart(err, "failed to open Run key")
	}
	defer key.Close()

	_, _, err = key.GetStringValue(AppName)
	if errors.Is(err, registry.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Autostart(err, "failed to read Run value")
	}
	return true, nil
}
