package inventory_repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freshsave/internal/core/apperror"
	"freshsave/internal/domain/inventory"
	"freshsave/internal/infrastructure/storage/docstore"
	"freshsave/internal/infrastructure/storage/memstore"
	"freshsave/pkg/logger"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) (*Repo, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	r := New(store, Config{CollectionID: "items"},
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(logger.Nop()),
	)
	return r, store
}

func ptr[T any](v T) *T { return &v }

func mustAdd(t *testing.T, r *Repo, it inventory.Item) string {
	t.Helper()
	newID, err := r.AddItem(context.Background(), it).Get()
	require.NoError(t, err)
	require.NotEmpty(t, newID)
	return newID
}

func TestAddThenGetRoundTrip(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	in := inventory.Item{
		ID:         "ignored",
		Name:       "Milk",
		Category:   "Dairy",
		Quantity:   1.0,
		Unit:       ptr("liter"),
		ExpiryDate: ptr(fixedNow.AddDate(0, 0, 3)),
		IsFavorite: true,
	}
	newID := mustAdd(t, r, in)
	assert.NotEqual(t, "ignored", newID)

	got, err := r.GetItem(ctx, newID).Get()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newID, got.ID)
	assert.True(t, in.SameContent(*got), "got %+v", *got)
}

func TestTimestampRoundTripKeepsMilliseconds(t *testing.T) {
	in := time.Date(2026, 2, 28, 23, 59, 58, 123_456_789, time.FixedZone("CET", 3600))

	s := FormatTimestamp(in)
	assert.Equal(t, "2026-02-28T22:59:58.123Z", s)

	out, err := ParseTimestamp(s)
	require.NoError(t, err)
	assert.True(t, out.Equal(in.Truncate(time.Millisecond)))

	withOffset, err := ParseTimestamp("2026-02-28T22:59:58.123+00:00")
	require.NoError(t, err)
	assert.True(t, withOffset.Equal(out))

	_, err = ParseTimestamp("28/02/2026")
	assert.Error(t, err)
}

func TestExpiringSoonWindowBounds(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	cases := map[string]*time.Time{
		"at-now":      ptr(fixedNow),
		"in-3-days":   ptr(fixedNow.AddDate(0, 0, 3)),
		"at-7-days":   ptr(fixedNow.AddDate(0, 0, 7)),
		"past-7-days": ptr(fixedNow.AddDate(0, 0, 7).Add(time.Millisecond)),
		"yesterday":   ptr(fixedNow.AddDate(0, 0, -1)),
		"no-expiry":   nil,
	}
	for name, exp := range cases {
		mustAdd(t, r, inventory.Item{Name: name, Category: "Dairy", Quantity: 1, ExpiryDate: exp})
	}

	items, err := r.GetExpiringSoonItems(ctx).Get()
	require.NoError(t, err)

	var names []string
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.ElementsMatch(t, []string{"in-3-days", "at-7-days"}, names)
}

func TestExpiringWindowUsesCalendarDays(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// DST ends on 2026-11-01 in New York, so seven calendar days are 169 hours.
	now := time.Date(2026, 10, 30, 9, 0, 0, 0, ny)
	from, to := ExpiringWindow(now, 7)
	assert.Equal(t, now, from)
	assert.Equal(t, 169*time.Hour, to.Sub(from))
	assert.Equal(t, 9, to.Hour())
}

func TestGetItemDistinguishesMissingFromFailure(t *testing.T) {
	r, store := newRepo(t)
	ctx := context.Background()

	res := r.GetItem(ctx, "does-not-exist")
	require.True(t, res.IsSuccess())
	assert.Nil(t, res.Value())

	store.FailWith(errors.New("network unreachable"))
	res = r.GetItem(ctx, "does-not-exist")
	assert.True(t, res.IsFailure())

	assert.True(t, r.GetItem(ctx, " ").IsFailure())
}

func TestUpdateReplacesAllFields(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	newID := mustAdd(t, r, inventory.Item{Name: "Cheese", Category: "Dairy", Quantity: 2, Unit: ptr("g"), ExpiryDate: ptr(fixedNow)})

	updated := inventory.Item{ID: newID, Name: "Cheddar", Category: "Dairy & Eggs", Quantity: 0.5}
	require.True(t, r.UpdateItem(ctx, updated).IsSuccess())

	got, err := r.GetItem(ctx, newID).Get()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, updated.Equal(*got), "got %+v", *got)
	assert.Nil(t, got.Unit)
	assert.Nil(t, got.ExpiryDate)
}

func TestUpdateRejectsBlankIDAndNegativeQuantity(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	res := r.UpdateItem(ctx, inventory.Item{Name: "x", Quantity: 1})
	assert.True(t, res.IsFailure())

	newID := mustAdd(t, r, inventory.NewItem("Eggs", "Dairy & Eggs"))
	res = r.UpdateItem(ctx, inventory.Item{ID: newID, Name: "Eggs", Quantity: -1})
	assert.True(t, res.IsFailure())
	assert.True(t, r.AddItem(ctx, inventory.Item{Name: "Bad", Quantity: -2}).IsFailure())
}

func TestDeleteRemovesFromBothLists(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	newID := mustAdd(t, r, inventory.Item{Name: "Yogurt", Category: "Dairy", Quantity: 1, ExpiryDate: ptr(fixedNow.AddDate(0, 0, 2))})
	require.Len(t, r.GetAllItems(ctx).Value(), 1)
	require.Len(t, r.GetExpiringSoonItems(ctx).Value(), 1)

	require.True(t, r.DeleteItem(ctx, newID).IsSuccess())
	assert.Empty(t, r.GetAllItems(ctx).Value())
	assert.Empty(t, r.GetExpiringSoonItems(ctx).Value())

	res := r.DeleteItem(ctx, newID)
	assert.True(t, res.IsFailure())
	assert.True(t, apperror.IsNotFound(res.Err()))
}

func TestUnparseableExpiryReadsAsAbsent(t *testing.T) {
	r, store := newRepo(t)
	ctx := context.Background()

	doc, err := store.CreateDocument(ctx, "items", "", docstore.Fields{
		"name": "Mystery jar", "category": "Pantry Staples", "quantity": 1, "expiryDate": "next tuesday",
	})
	require.NoError(t, err)

	got, err := r.GetItem(ctx, doc.ID).Get()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.ExpiryDate)
	assert.Equal(t, 1.0, got.Quantity)
}

func TestGetAllItemsPagesThroughLargeCollections(t *testing.T) {
	r, _ := newRepo(t)
	for i := 0; i < 2*listPageSize+17; i++ {
		mustAdd(t, r, inventory.NewItem(fmt.Sprintf("item-%d", i), "Snacks"))
	}

	items, err := r.GetAllItems(context.Background()).Get()
	require.NoError(t, err)
	assert.Len(t, items, 2*listPageSize+17)
}

func TestFailuresAreResultsNotPanics(t *testing.T) {
	r, store := newRepo(t)
	store.FailWith(errors.New("503 from upstream"))
	ctx := context.Background()

	assert.True(t, r.AddItem(ctx, inventory.NewItem("a", "b")).IsFailure())
	assert.True(t, r.GetAllItems(ctx).IsFailure())
	assert.True(t, r.GetExpiringSoonItems(ctx).IsFailure())
	assert.True(t, r.DeleteItem(ctx, "x").IsFailure())

	store.FailWith(nil)
	canceled, cancel := context.WithCancel(ctx)
	cancel()
	res := r.GetAllItems(canceled)
	require.True(t, res.IsFailure())
	assert.True(t, apperror.IsCanceled(res.Err()))
}
