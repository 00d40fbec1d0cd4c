package config

import (
	"sync"

	"loradex/internal/common/fsutil"
)

// Store is the live configuration. Reads are cheap and concurrent; updates
// persist to the backing file when one is set.
type Store struct {
	mu   sync.RWMutex
	path string
	cfg  Config
}

// NewStore wraps cfg. path is where Update persists; empty keeps changes in memory.
func NewStore(path string, cfg Config) *Store {
	return &Store{path: path, cfg: cfg}
}

// Path returns the backing file, possibly empty.
func (s *Store) Path() string { return s.path }

// Get returns a copy of the current configuration.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.cfg
	c.CORSOrigins = append([]string(nil), s.cfg.CORSOrigins...)
	return c
}

// BasePath returns the configured model directory with "~" expanded. An
// empty result means no base path is configured.
func (s *Store) BasePath() string {
	s.mu.RLock()
	p := s.cfg.LoraPath
	s.mu.RUnlock()
	if p == "" {
		return ""
	}
	if exp, err := fsutil.ExpandHome(p); err == nil {
		return exp
	}
	return p
}

// SetBasePath replaces the model directory and persists the change.
func (s *Store) SetBasePath(p string) error {
	return s.Update(func(c *Config) { c.LoraPath = p })
}

// Update applies fn to the configuration and persists the result. On a save
// failure the in-memory configuration is left unchanged.
func (s *Store) Update(fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cfg
	next.CORSOrigins = append([]string(nil), s.cfg.CORSOrigins...)
	fn(&next)
	if s.path != "" {
		if err := Save(s.path, next); err != nil {
			return err
		}
	}
	s.cfg = next
	return nil
}
