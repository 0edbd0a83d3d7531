package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freshsave/internal/core/apperror"
	"freshsave/internal/core/id"
	"freshsave/internal/infrastructure/storage/docstore"
)

const coll = "items"

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return fixed }))

	doc, err := s.CreateDocument(ctx, coll, id.Unique, docstore.Fields{"name": "Milk", "unit": "liter"})
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)
	assert.NotEqual(t, id.Unique, doc.ID)
	assert.Equal(t, fixed, doc.CreatedAt)

	got, err := s.GetDocument(ctx, coll, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Milk", got.Data.GetString("name"))

	// mutating the returned copy must not leak into the store
	got.Data["name"] = "Changed"
	again, _ := s.GetDocument(ctx, coll, doc.ID)
	assert.Equal(t, "Milk", again.Data.GetString("name"))

	_, err = s.UpdateDocument(ctx, coll, doc.ID, docstore.Fields{"unit": nil})
	require.NoError(t, err)
	again, _ = s.GetDocument(ctx, coll, doc.ID)
	assert.False(t, again.Data.Has("unit"))

	require.NoError(t, s.DeleteDocument(ctx, coll, doc.ID))
	_, err = s.GetDocument(ctx, coll, doc.ID)
	assert.True(t, apperror.IsNotFound(err))

	err = s.DeleteDocument(ctx, coll, doc.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreateWithExplicitIDConflicts(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.CreateDocument(ctx, coll, "fixed", docstore.Fields{})
	require.NoError(t, err)
	_, err = s.CreateDocument(ctx, coll, "fixed", docstore.Fields{})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestListPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, n := range []string{"a", "b", "c"} {
		_, err := s.CreateDocument(ctx, coll, n, docstore.Fields{"name": n})
		require.NoError(t, err)
	}
	require.NoError(t, s.DeleteDocument(ctx, coll, "b"))

	list, err := s.ListDocuments(ctx, coll)
	require.NoError(t, err)
	require.Len(t, list.Documents, 2)
	assert.Equal(t, "a", list.Documents[0].ID)
	assert.Equal(t, "c", list.Documents[1].ID)

	empty, err := s.ListDocuments(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
}

func TestFailureInjectionAndCancellation(t *testing.T) {
	s := New()
	s.FailWith(errors.New("connection refused"))

	_, err := s.ListDocuments(context.Background(), coll)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeStore, appErr.Code)

	s.FailWith(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.ListDocuments(ctx, coll)
	assert.ErrorIs(t, err, context.Canceled)
}
