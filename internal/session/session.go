// Package session organizes captured images into named imaging sessions.
// The capture engine only depends on the Store interface; the filesystem
// implementation below is the one the server wires in.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session id does not exist.
var ErrNotFound = errors.New("session not found")

// Info is the metadata of one imaging session.
type Info struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Target    string        `json:"target"` // object being imaged, e.g. "M31"
	CreatedAt time.Time     `json:"created_at"`
	Images    []ImageRecord `json:"images"`
}

// ImageRecord is one captured image registered against a session.
type ImageRecord struct {
	Filename   string   `json:"filename"`
	SizeBytes  int64    `json:"size_bytes"`
	FocusScore *float64 `json:"focus_score,omitempty"`
	AddedAt    string   `json:"added_at"`
}

// Store is the contract the capture engine uses to resolve output locations
// and register results. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns session metadata, or ErrNotFound.
	Get(id string) (*Info, error)

	// CapturesPath returns the directory captures for this session go to,
	// or ErrNotFound.
	CapturesPath(id string) (string, error)

	// AddImage registers a captured file against a session.
	AddImage(id, filename string, sizeBytes int64, focusScore *float64) error
}

// FSStore keeps each session as a directory under root:
// <root>/<id>/session.json plus <root>/<id>/captures/.
type FSStore struct {
	mu   sync.Mutex
	root string
}

// NewFSStore creates a filesystem-backed session store rooted at dir.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session root: %w", err)
	}
	return &FSStore{root: dir}, nil
}

// Create starts a new session and returns its metadata.
func (s *FSStore) Create(name, target string) (*Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := &Info{
		ID:        uuid.New().String(),
		Name:      name,
		Target:    target,
		CreatedAt: time.Now().UTC(),
		Images:    []ImageRecord{},
	}

	if err := os.MkdirAll(s.capturesDir(info.ID), 0o755); err != nil {
		return nil, fmt.Errorf("creating session dirs: %w", err)
	}
	if err := s.write(info); err != nil {
		return nil, err
	}
	return info, nil
}

// Get implements Store.
func (s *FSStore) Get(id string) (*Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

// List returns all sessions, newest first not guaranteed.
func (s *FSStore) List() ([]*Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading session root: %w", err)
	}

	var sessions []*Info
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := s.read(e.Name())
		if err != nil {
			// Skip directories without valid metadata.
			continue
		}
		sessions = append(sessions, info)
	}
	return sessions, nil
}

// CapturesPath implements Store.
func (s *FSStore) CapturesPath(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.read(id); err != nil {
		return "", err
	}
	return s.capturesDir(id), nil
}

// AddImage implements Store.
func (s *FSStore) AddImage(id, filename string, sizeBytes int64, focusScore *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := s.read(id)
	if err != nil {
		return err
	}

	info.Images = append(info.Images, ImageRecord{
		Filename:   filename,
		SizeBytes:  sizeBytes,
		FocusScore: focusScore,
		AddedAt:    time.Now().UTC().Format(time.RFC3339),
	})
	return s.write(info)
}

func (s *FSStore) capturesDir(id string) string {
	return filepath.Join(s.root, id, "captures")
}

func (s *FSStore) metaPath(id string) string {
	return filepath.Join(s.root, id, "session.json")
}

func (s *FSStore) read(id string) (*Info, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading session %s: %w", id, err)
	}

	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &info, nil
}

func (s *FSStore) write(info *Info) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", info.ID, err)
	}
	if err := os.WriteFile(s.metaPath(info.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing session %s: %w", info.ID, err)
	}
	return nil
}
