// Package session holds in-memory document sessions. Nothing is
// persisted: a session lives for the server process and is dropped
// wholesale on reset.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/primer/internal/pipeline"
	"github.com/jackzampolin/primer/internal/segment"
	"github.com/jackzampolin/primer/internal/types"
)

// Document is one ingested document and, once a mode is selected, its
// reading session.
type Document struct {
	ID        string
	Title     string
	Pages     []types.Page
	Sections  []types.Section
	Method    segment.Method
	CreatedAt time.Time

	// Reader is nil until a mode is selected.
	Reader *pipeline.Scheduler
}

// Store is a thread-safe registry of documents by ID.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Create registers a new document and assigns it an ID.
func (s *Store) Create(title string, pages []types.Page, detected segment.Result) *Document {
	doc := &Document{
		ID:        uuid.New().String(),
		Title:     title,
		Pages:     pages,
		Sections:  detected.Sections,
		Method:    detected.Method,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return doc
}

// Get returns a document by ID.
func (s *Store) Get(id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	return doc, nil
}

// AttachReader installs a reading session for the document. Selecting
// a mode again replaces the previous scheduler; any in-flight work for
// the old scheduler completes into a discarded slot map.
func (s *Store) AttachReader(id string, reader *pipeline.Scheduler) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	doc.Reader = reader
	return doc, nil
}

// Delete drops a document and all of its pipeline state wholesale.
// In-flight transformations are not unwound; their eventual results
// land in a scheduler nothing references.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	delete(s.docs, id)
	return nil
}

// Count returns the number of live documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// List returns all documents, unordered.
func (s *Store) List() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	return out
}
