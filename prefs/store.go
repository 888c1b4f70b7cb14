// Package prefs is a best-effort key/value preference file. Every failure is
// logged at debug level and otherwise ignored; callers fall back to defaults.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"webmgen/logging"
)

// Store persists JSON values under string keys in a single file.
type Store struct {
	path   string
	lock   *flock.Flock
	logger *logging.Logger
	mu     sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report swallowed failures.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open returns a store backed by path. The file is created lazily on the
// first Save. An empty path yields a store that remembers nothing.
func Open(path string, opts ...Option) *Store {
	s := &Store{path: path, logger: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("component", "prefs"), zap.String("path", path))
	if path != "" {
		s.lock = flock.New(path + ".lock")
	}
	return s
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load decodes the value stored under key into dst and reports whether it
// did. A missing file, key or malformed content all report false.
func (s *Store) Load(key string, dst any) bool {
	if s.path == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		s.logger.Debug("preferences unreadable", zap.Error(err))
		return false
	}
	raw, ok := entries[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Debug("preference value malformed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Save stores value under key, keeping the other keys. It is skipped when
// another process holds the file lock.
func (s *Store) Save(key string, value any) {
	if s.path == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(key, value); err != nil {
		s.logger.Debug("preferences not saved", zap.String("key", key), zap.Error(err))
	}
}

func (s *Store) save(key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}

	locked, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock preferences: %w", err)
	}
	if !locked {
		return errors.New("preferences locked by another process")
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	entries, err := s.read()
	if err != nil {
		s.logger.Debug("discarding unreadable preferences", zap.Error(err))
		entries = nil
	}
	if entries == nil {
		entries = make(map[string]json.RawMessage)
	}
	entries[key] = encoded

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// read returns the decoded file; a missing or empty file is an empty map.
func (s *Store) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	if len(data) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse preferences: %w", err)
	}
	return entries, nil
}
