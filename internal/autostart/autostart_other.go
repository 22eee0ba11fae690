//go:build !linux && !windows

package autostart

import (
	apperrors "launchhook/internal/errors"
)

type unsupported struct{}

// New returns a registrar whose operations all fail with ErrUnsupported
func New() (Registrar, error) {
	return unsupported{}, nil
}

func (unsupported) Enable(string) error {
	return apperrors.Autostart(apperrors.ErrUnsupported, "autostart")
}

func (unsupported) Disable() error {
	return nil
}

func (unsupported) Enabled() (bool, error) {
	return false, nil
}
