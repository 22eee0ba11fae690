package cmd

import (
	"fmt"
	"io/fs"

	"launchhook/internal/autostart"
	"launchhook/internal/config"
	"launchhook/internal/controller"
	apperrors "launchhook/internal/errors"
	"launchhook/internal/hook"
	"launchhook/internal/logging"
	"launchhook/internal/monitor"
	"launchhook/internal/status"
)

// session is what every command starts from: the logger and the live
// configuration loaded from configPath.
type session struct {
	logger  *logging.Logger
	store   *config.Store
	loadErr error
}

func openSession() *session {
	logging.InitLogger("launchhook", verbose)
	logger := logging.DefaultLogger

	// A bad file is not fatal; the defaults are used and loadErr is kept for display
	cfg, err := config.Load(configPath, logger)
	return &session{
		logger:  logger,
		store:   config.NewStore(cfg, configPath),
		loadErr: err,
	}
}

// checkWritable refuses a save over a config file that exists but failed to
// load; a missing file is fine.
func checkWritable(path string, loadErr error) error {
	if loadErr == nil || apperrors.Is(loadErr, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("refusing to overwrite %s, fix or remove it first: %w", path, loadErr)
}

// newController wires the watcher named by kind, the HTTP dispatcher and the
// status reporter around the session's store.
func (s *session) newController(kind string) (*controller.Controller, error) {
	watcher, err := monitor.NewWatcher(kind, s.logger.With("component", "watch"))
	if err != nil {
		return nil, err
	}

	return controller.New(controller.Options{
		Watcher:  watcher,
		Sender:   hook.NewDispatcher(nil, s.logger.With("component", "hook")),
		Source:   s.store,
		Reporter: status.NewReporter(s.logger.With("component", "status")),
		Logger:   s.logger.With("component", "controller"),
	}), nil
}

// applyAutostart brings the login entry in line with the autoStartApp setting
func (s *session) applyAutostart() {
	reg, err := autostart.New()
	if err == nil {
		err = autostart.Apply(reg, s.store.Snapshot().AutoStartApp, "")
	}
	if err != nil {
		s.logger.Warnf("Failed to update autostart entry: %v", err)
	}
}

// watchConfig follows edits made to the config file by other commands. Without
// a readable file there is nothing to follow and the startup record is kept.
func (s *session) watchConfig(pin func(*config.Config)) {
	if s.loadErr != nil {
		s.logger.Debugf("Not watching configuration: %v", s.loadErr)
		return
	}
	if err := s.store.Watch(s.logger.With("component", "config"), pin); err != nil {
		s.logger.Warnf("Configuration changes will not be picked up: %v", err)
	}
}
