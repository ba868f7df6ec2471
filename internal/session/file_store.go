package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// File permission constants.
const (
	directoryPermission = 0o700
	filePermission      = 0o600
)

// FileStore persists values as a flat YAML document. Every call re-reads the
// file so two processes sharing it see each other's writes.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file is created lazily on
// the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, err := s.load()
	if err != nil {
		return "", false, err
	}
	if !k.Exists(key) {
		return "", false, nil
	}
	return k.String(key), true, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, err := s.load()
	if err != nil {
		return err
	}
	if err := k.Set(key, value); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return s.save(k)
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, err := s.load()
	if err != nil {
		return err
	}
	if !k.Exists(key) {
		return nil
	}
	k.Delete(key)
	return s.save(k)
}

// load reads the file; a missing file is an empty store. Keys are never split
// on dots so arbitrary key names survive a round trip.
func (s *FileStore) load() (*koanf.Koanf, error) {
	k := koanf.New("\x00")
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return k, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	if err := k.Load(file.Provider(s.path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrStore, s.path, err)
	}
	return k, nil
}

func (s *FileStore) save(k *koanf.Koanf) error {
	b, err := k.Marshal(yaml.Parser())
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrStore, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), directoryPermission); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	// Write-then-rename so a crash never leaves a truncated token file.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	if err := tmp.Chmod(filePermission); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}
