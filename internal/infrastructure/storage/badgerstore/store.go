// Package badgerstore is an embedded document store on BadgerDB.
//
// Documents are stored as JSON under "doc/<collection>/<id>". Lists scan
// the collection prefix and evaluate queries in process, so keys come back
// in id order, which for generated UUIDv7 ids is creation order.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"freshsave/internal/core/apperror"
	"freshsave/internal/core/id"
	"freshsave/internal/infrastructure/storage/docstore"
)

// Store implements docstore.Store over a badger database.
type Store struct {
	db  *badger.DB
	now func() time.Time
}

var _ docstore.Store = (*Store)(nil)

// Open opens (or creates) a database at path. An empty path opens an
// in-memory instance.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func docKey(collectionID, documentID string) []byte {
	return []byte("doc/" + collectionID + "/" + documentID)
}

func collPrefix(collectionID string) []byte {
	return []byte("doc/" + collectionID + "/")
}

func (s *Store) CreateDocument(ctx context.Context, collectionID, documentID string, data docstore.Fields) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, err
	}

	now := s.now().UTC()
	doc := docstore.Document{
		ID:           id.Resolve(documentID),
		CollectionID: collectionID,
		CreatedAt:    now,
		UpdatedAt:    now,
		Data:         docstore.MergeFields(nil, data),
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		key := docKey(collectionID, doc.ID)
		_, err := txn.Get(key)
		if err == nil {
			return apperror.NewConflict("document already exists").WithDetail("id", doc.ID)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return putDoc(txn, key, doc)
	})
	if err != nil {
		return docstore.Document{}, wrap("create", err)
	}
	return doc, nil
}

func (s *Store) GetDocument(ctx context.Context, collectionID, documentID string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, err
	}

	var doc docstore.Document
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		doc, err = getDoc(txn, collectionID, documentID)
		return err
	})
	if err != nil {
		return docstore.Document{}, wrap("get", err)
	}
	return doc, nil
}

func (s *Store) UpdateDocument(ctx context.Context, collectionID, documentID string, data docstore.Fields) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, err
	}

	var doc docstore.Document
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		doc, err = getDoc(txn, collectionID, documentID)
		if err != nil {
			return err
		}
		doc.Data = docstore.MergeFields(doc.Data, data)
		doc.UpdatedAt = s.now().UTC()
		return putDoc(txn, docKey(collectionID, documentID), doc)
	})
	if err != nil {
		return docstore.Document{}, wrap("update", err)
	}
	return doc, nil
}

func (s *Store) DeleteDocument(ctx context.Context, collectionID, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		key := docKey(collectionID, documentID)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return docstore.NotFound(collectionID, documentID)
			}
			return err
		}
		return txn.Delete(key)
	})
	return wrap("delete", err)
}

func (s *Store) ListDocuments(ctx context.Context, collectionID string, queries ...docstore.Query) (docstore.DocumentList, error) {
	if err := ctx.Err(); err != nil {
		return docstore.DocumentList{}, err
	}
	if err := docstore.ValidateAll(queries); err != nil {
		return docstore.DocumentList{}, apperror.NewInvalidInput(err.Error())
	}

	var all []docstore.Document
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = collPrefix(collectionID)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var doc docstore.Document
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			all = append(all, doc)
		}
		return nil
	})
	if err != nil {
		return docstore.DocumentList{}, wrap("list", err)
	}
	return docstore.Evaluate(all, queries)
}

// Ping verifies the database is open.
func (s *Store) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return apperror.NewStore("ping", errors.New("badger database is closed"))
	}
	return ctx.Err()
}

func getDoc(txn *badger.Txn, collectionID, documentID string) (docstore.Document, error) {
	item, err := txn.Get(docKey(collectionID, documentID))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return docstore.Document{}, docstore.NotFound(collectionID, documentID)
		}
		return docstore.Document{}, err
	}
	var doc docstore.Document
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	})
	return doc, err
}

func putDoc(txn *badger.Txn, key []byte, doc docstore.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return txn.Set(key, raw)
}

// wrap leaves AppErrors and cancellation untouched and marks the rest as
// store failures.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperror.NewStore(op, err)
}
