package schema

import "sync"

// Store holds the process-wide schema document. The document is loaded
// once at startup and swapped as a whole reference on reload; readers
// never observe a half-updated schema.
type Store struct {
	mu   sync.RWMutex
	path string
	doc  *Document
}

// NewStore loads the schema at path and returns a store owning it.
func NewStore(path string) (*Store, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, doc: doc}, nil
}

// Current returns the active schema document.
func (s *Store) Current() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Path returns the on-disk location the store was loaded from.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the schema file and atomically swaps the document.
// On failure the previous document stays active.
func (s *Store) Reload() error {
	doc, err := LoadDocument(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}
