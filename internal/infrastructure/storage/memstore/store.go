// Package memstore is an in-process document store. It backs the "memory"
// driver and the repository and coordinator tests. Nothing is persisted.
package memstore

import (
	"context"
	"sync"
	"time"

	"freshsave/internal/core/apperror"
	"freshsave/internal/core/id"
	"freshsave/internal/infrastructure/storage/docstore"
)

// Store keeps documents per collection in insertion order.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	now         func() time.Time

	// failWith, when set, is returned by every call. Tests use it to
	// simulate an unreachable backend.
	failWith error
}

type collection struct {
	order []string
	docs  map[string]docstore.Document
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source for $createdAt and $updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]*collection),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ docstore.Store = (*Store)(nil)

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) guard(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.failWith != nil {
		return apperror.NewStore("call", s.failWith)
	}
	return nil
}

func (s *Store) coll(collectionID string) *collection {
	c, ok := s.collections[collectionID]
	if !ok {
		c = &collection{docs: make(map[string]docstore.Document)}
		s.collections[collectionID] = c
	}
	return c
}

func (s *Store) CreateDocument(ctx context.Context, collectionID, documentID string, data docstore.Fields) (docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(ctx); err != nil {
		return docstore.Document{}, err
	}

	c := s.coll(collectionID)
	docID := id.Resolve(documentID)
	if _, exists := c.docs[docID]; exists {
		return docstore.Document{}, apperror.NewConflict("document already exists").WithDetail("id", docID)
	}

	now := s.now().UTC()
	doc := docstore.Document{
		ID:           docID,
		CollectionID: collectionID,
		CreatedAt:    now,
		UpdatedAt:    now,
		Data:         docstore.MergeFields(nil, data),
	}
	c.docs[docID] = doc
	c.order = append(c.order, docID)
	return copyDoc(doc), nil
}

func (s *Store) GetDocument(ctx context.Context, collectionID, documentID string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(ctx); err != nil {
		return docstore.Document{}, err
	}

	c, ok := s.collections[collectionID]
	if !ok {
		return docstore.Document{}, docstore.NotFound(collectionID, documentID)
	}
	doc, ok := c.docs[documentID]
	if !ok {
		return docstore.Document{}, docstore.NotFound(collectionID, documentID)
	}
	return copyDoc(doc), nil
}

func (s *Store) UpdateDocument(ctx context.Context, collectionID, documentID string, data docstore.Fields) (docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(ctx); err != nil {
		return docstore.Document{}, err
	}

	c, ok := s.collections[collectionID]
	if !ok {
		return docstore.Document{}, docstore.NotFound(collectionID, documentID)
	}
	doc, ok := c.docs[documentID]
	if !ok {
		return docstore.Document{}, docstore.NotFound(collectionID, documentID)
	}
	doc.Data = docstore.MergeFields(doc.Data, data)
	doc.UpdatedAt = s.now().UTC()
	c.docs[documentID] = doc
	return copyDoc(doc), nil
}

func (s *Store) DeleteDocument(ctx context.Context, collectionID, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(ctx); err != nil {
		return err
	}

	c, ok := s.collections[collectionID]
	if !ok {
		return docstore.NotFound(collectionID, documentID)
	}
	if _, ok := c.docs[documentID]; !ok {
		return docstore.NotFound(collectionID, documentID)
	}
	delete(c.docs, documentID)
	for i, v := range c.order {
		if v == documentID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListDocuments(ctx context.Context, collectionID string, queries ...docstore.Query) (docstore.DocumentList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(ctx); err != nil {
		return docstore.DocumentList{}, err
	}

	c, ok := s.collections[collectionID]
	if !ok {
		return docstore.Evaluate(nil, queries)
	}
	all := make([]docstore.Document, 0, len(c.order))
	for _, docID := range c.order {
		all = append(all, copyDoc(c.docs[docID]))
	}
	return docstore.Evaluate(all, queries)
}

// Ping always succeeds unless a failure was injected.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guard(ctx)
}

func copyDoc(d docstore.Document) docstore.Document {
	d.Data = d.Data.Clone()
	return d
}
