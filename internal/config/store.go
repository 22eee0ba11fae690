package config

import (
	"sync"

	"launchhook/internal/hook"
)

// Store is the live, editable configuration shared between the control surface
// and the monitor. Readers always get copies.
type Store struct {
	mu   sync.RWMutex
	cfg  Config
	path string
}

// NewStore wraps cfg; path is where Save writes
func NewStore(cfg *Config, path string) *Store {
	if cfg == nil {
		cfg = Default()
	}
	return &Store{cfg: *cfg, path: path}
}

// Path returns the file the store saves to
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a copy of the current record
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update applies fn to the record under the write lock
func (s *Store) Update(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.cfg)
}

// RequestConfig returns the callback part of the current record
func (s *Store) RequestConfig() hook.RequestConfig {
	c := s.Snapshot()
	return hook.RequestConfig{
		URL:          c.URL,
		Method:       c.Method,
		APIKey:       c.APIKey,
		HeaderBlock:  c.HeaderBlock,
		BodyTemplate: c.BodyTemplate,
	}
}

// MonitorConfig returns the monitoring part of the current record
func (s *Store) MonitorConfig() MonitorConfig {
	c := s.Snapshot()
	return MonitorConfig{
		TargetProcessName:   c.TargetProcessName,
		AutoStartMonitoring: c.AutoStartMonitoring,
	}
}

// SetTarget changes the selected process name
func (s *Store) SetTarget(name string) {
	s.Update(func(c *Config) { c.TargetProcessName = name })
}

// Save persists the current record
func (s *Store) Save() error {
	c := s.Snapshot()
	return SaveConfig(&c, s.path)
}
