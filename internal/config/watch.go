package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"

	apperrors "launchhook/internal/errors"
	"launchhook/internal/logging"
)

// Watch keeps the store in step with its file: every time the file is written
// it is read again and replaces the record. pin, if set, runs on each reloaded
// record before it is stored, e.g. to keep a command-line override.
// A reload that fails to parse keeps the previous record.
func (s *Store) Watch(logger *logging.Logger, pin func(*Config)) error {
	if s.path == "" {
		return apperrors.ValidationError("config store has no file to watch")
	}
	if logger == nil {
		logger = logging.NewLogger("[config]", false)
	}

	v := newViper(s.path)
	if err := v.ReadInConfig(); err != nil {
		return apperrors.ConfigLoad(err, fmt.Sprintf("failed to read config file %s", s.path))
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			logger.Warnf("Ignoring config change: %v", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			logger.Warnf("Ignoring config change: %v", err)
			return
		}
		if pin != nil {
			pin(cfg)
		}
		s.Update(func(c *Config) { *c = *cfg })
		logger.Infof("Reloaded configuration from %s", e.Name)
	})
	v.WatchConfig()

	logger.Debugf("Watching %s for changes", s.path)
	return nil
}
