package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"listing-studio/internal/models"
)

var (
	// ErrMissingID is returned by Save when the record carries no id.
	// Ids are assigned by the caller, never by the store.
	ErrMissingID = errors.New("listing id is required")

	// ErrNotFound is returned by GetByID for unknown ids.
	ErrNotFound = errors.New("listing not found")
)

// Store persists the whole listing collection as one JSON array file.
//
// Every operation is a full read-modify-write of the file. Mutations are
// serialized behind a single mutex so concurrent saves cannot drop each
// other's writes, and writes go through a temp file plus rename so a crash
// mid-write never leaves a half-written file behind.
type Store struct {
	path string
	log  logrus.FieldLogger
	mu   sync.Mutex
}

// New creates a store backed by the JSON file at path.
func New(path string, logger logrus.FieldLogger) *Store {
	return &Store{
		path: path,
		log:  logger.WithField("component", "store"),
	}
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Initialize ensures the backing file exists, creating it with an empty
// array if absent. Calling it again is a no-op.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return s.write([]models.Listing{})
}

// ReadAll returns the full ordered sequence of listings, newest first.
//
// A missing or corrupt backing file reads as an empty collection. The read
// path never fails the caller; problems are logged and swallowed. That
// trades corruption signaling for availability, which fits the
// single-operator deployment this store is built for.
func (s *Store) ReadAll() []models.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *Store) readAll() []models.Listing {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).Warn("Failed to read listing file, treating as empty")
		}
		return []models.Listing{}
	}

	var listings []models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		s.log.WithError(err).Warn("Listing file is corrupt, treating as empty")
		return []models.Listing{}
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	return listings
}

// WriteAll replaces the backing file contents with the given sequence.
func (s *Store) WriteAll(listings []models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(listings)
}

// write serializes and atomically replaces the backing file.
// Callers must hold s.mu.
func (s *Store) write(listings []models.Listing) error {
	if listings == nil {
		listings = []models.Listing{}
	}

	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode listings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".listings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace listing file: %w", err)
	}
	return nil
}

// Save prepends the listing to the collection and persists it.
//
// The id must already be set; the store rejects records without one. No
// de-duplication happens: saving an id that already exists appends a second
// record sharing that id, and GetByID will return the newer one.
func (s *Store) Save(listing models.Listing) error {
	if listing.ID == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	listings := s.readAll()
	listings = append([]models.Listing{listing}, listings...)
	if err := s.write(listings); err != nil {
		return err
	}

	s.log.WithField("id", listing.ID).Debug("Listing saved")
	return nil
}

// DeleteByID removes every listing whose id matches and reports how many
// were removed. Deleting an unknown id succeeds with a count of zero.
func (s *Store) DeleteByID(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listings := s.readAll()
	kept := make([]models.Listing, 0, len(listings))
	removed := 0
	for _, l := range listings {
		if l.ID == id {
			removed++
			continue
		}
		kept = append(kept, l)
	}

	if removed == 0 {
		return 0, nil
	}
	if err := s.write(kept); err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{"id": id, "removed": removed}).Debug("Listing deleted")
	return removed, nil
}

// GetByID returns the first listing with the given id, or ErrNotFound.
func (s *Store) GetByID(id string) (models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.readAll() {
		if l.ID == id {
			return l, nil
		}
	}
	return models.Listing{}, ErrNotFound
}
