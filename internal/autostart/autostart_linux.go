package autostart

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "launchhook/internal/errors"
)

// XDGRegistrar writes a desktop entry into the XDG autostart directory
type XDGRegistrar struct {
	Dir string
}

// New returns the registrar for ~/.config/autostart
func New() (Registrar, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, apperrors.Autostart(err, "failed to locate user config directory")
	}
	return &XDGRegistrar{Dir: filepath.Join(dir, "autostart")}, nil
}

func (r *XDGRegistrar) file() string {
	return filepath.Join(r.Dir, AppName+".desktop")
}

// desktopEntry renders the autostart entry; Exec arguments are quoted per the
// desktop entry spec when they contain spaces.
func desktopEntry(path string) string {
	exec := path
	if strings.ContainsAny(path, " \t\"") {
		exec = `"` + strings.ReplaceAll(path, `"`, `\"`) + `"`
	}
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=Send a callback when a watched process starts
Exec=%s run
Terminal=false
X-GNOME-Autostart-enabled=true
`, AppName, exec)
}

// Enable writes the desktop entry
func (r *XDGRegistrar) Enable(path string) error {
	if err := os.MkdirAll(r.Dir, 0755); err != nil {
		return apperrors.Autostart(err, "failed to create autostart directory")
	}
	if err := os.WriteFile(r.file(), []byte(desktopEntry(path)), 0644); err != nil {
		return apperrors.Autostart(err, "failed to write autostart entry")
	}
	return nil
}

// Disable removes the desktop entry
func (r *XDGRegistrar) Disable() error {
	err := os.Remove(r.file())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.Autostart(err, "failed to remove autostart entry")
	}
	return nil
}

// Enabled reports whether the desktop entry exists
func (r *XDGRegistrar) Enabled() (bool, error) {
	_, err := os.Stat(r.file())
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, apperrors.Autostart(err, "failed to read autostart entry")
}
