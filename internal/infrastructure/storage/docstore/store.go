// Package docstore defines the document-store contract the inventory
// repository persists through, plus the query model and an in-process
// query evaluator shared by the embedded backends.
//
// A store holds collections of schemaless documents. Each document is a
// flat Fields mapping keyed by attribute name and identified by a string
// id that is unique within its collection.
package docstore

import (
	"context"
	"time"

	"freshsave/internal/core/apperror"
)

// Document is a stored record.
type Document struct {
	ID           string    `json:"$id"`
	CollectionID string    `json:"$collectionId"`
	CreatedAt    time.Time `json:"$createdAt"`
	UpdatedAt    time.Time `json:"$updatedAt"`
	Data         Fields    `json:"data"`
}

// DocumentList is the outcome of a list call. Total counts every document
// matching the filters, ignoring limit and offset.
type DocumentList struct {
	Total     int        `json:"total"`
	Documents []Document `json:"documents"`
}

// Store is implemented by every backend (postgres, appwrite, badger, memory).
//
// CreateDocument assigns a fresh id when documentID is blank or id.Unique.
// UpdateDocument merges data into the stored fields; a key mapped to nil
// clears that attribute. Missing documents yield an apperror NOT_FOUND.
type Store interface {
	CreateDocument(ctx context.Context, collectionID, documentID string, data Fields) (Document, error)
	GetDocument(ctx context.Context, collectionID, documentID string) (Document, error)
	UpdateDocument(ctx context.Context, collectionID, documentID string, data Fields) (Document, error)
	DeleteDocument(ctx context.Context, collectionID, documentID string) error
	ListDocuments(ctx context.Context, collectionID string, queries ...Query) (DocumentList, error)
}

// Pinger is implemented by stores that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NotFound builds the error every backend returns for a missing document.
func NotFound(collectionID, documentID string) error {
	return apperror.NewNotFound("document", documentID).WithDetail("collection", collectionID)
}

// MergeFields returns base overlaid with patch. Keys mapped to nil in patch
// are kept with a nil value so the attribute reads as absent.
func MergeFields(base, patch Fields) Fields {
	out := base.Clone()
	if out == nil {
		out = make(Fields, len(patch))
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
