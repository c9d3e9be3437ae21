package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/alexisbeaulieu97/tokenflow/internal/token"
)

const snapshotExt = ".json"

// ErrSnapshotNotFound is returned when a named snapshot does not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore persists exported registry documents as JSON files in a directory.
type SnapshotStore struct {
	dir string
	mu  sync.RWMutex
}

// NewSnapshotStore creates the directory if needed.
func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &SnapshotStore{dir: dir}, nil
}

func (s *SnapshotStore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid snapshot name %q", name)
	}
	return filepath.Join(s.dir, name+snapshotExt), nil
}

// Save writes the document atomically under name.
func (s *SnapshotStore) Save(name string, doc token.Document) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteDocument(path, doc)
}

// Load reads a previously saved document.
func (s *SnapshotStore) Load(name string) (token.Document, error) {
	path, err := s.path(name)
	if err != nil {
		return token.Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := ReadDocument(path)
	if errors.Is(err, os.ErrNotExist) {
		return token.Document{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	return doc, err
}

// List returns saved snapshot names, sorted.
func (s *SnapshotStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != snapshotExt {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), snapshotExt))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a snapshot.
func (s *SnapshotStore) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return err
	}
	return nil
}

// WriteDocument writes doc to path through a temporary file and rename.
func WriteDocument(path string, doc token.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// ReadDocument reads and decodes a document file.
func ReadDocument(path string) (token.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return token.Document{}, err
	}
	var doc token.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return token.Document{}, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	return doc, nil
}
