// Package inventory_repo implements inventory.Repository on top of any
// document store backend.
package inventory_repo

import (
	"context"
	"time"

	"freshsave/internal/core/apperror"
	"freshsave/internal/core/id"
	"freshsave/internal/core/result"
	"freshsave/internal/domain/inventory"
	"freshsave/internal/infrastructure/storage/docstore"
	"freshsave/pkg/logger"
)

// Document attribute names.
const (
	fieldName       = "name"
	fieldCategory   = "category"
	fieldQuantity   = "quantity"
	fieldUnit       = "unit"
	fieldExpiryDate = "expiryDate"
	fieldIsFavorite = "isFavorite"
)

const (
	// DefaultCollectionID is the collection holding inventory items.
	DefaultCollectionID = "inventory_items"
	// DefaultExpiringWindowDays is the forward-looking expiring-soon window.
	DefaultExpiringWindowDays = 7

	listPageSize = 100
)

// Config configures the repository.
type Config struct {
	CollectionID       string
	ExpiringWindowDays int
}

// Repo is the document-store backed inventory repository.
type Repo struct {
	store        docstore.Store
	collectionID string
	windowDays   int
	now          func() time.Time
	log          *logger.Logger
}

var _ inventory.Repository = (*Repo)(nil)

// Option configures optional dependencies.
type Option func(*Repo)

// WithClock sets the time source used for the expiring-soon window.
func WithClock(now func() time.Time) Option {
	return func(r *Repo) { r.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Repo) { r.log = l }
}

// New creates a repository over store.
func New(store docstore.Store, cfg Config, opts ...Option) *Repo {
	r := &Repo{
		store:        store,
		collectionID: cfg.CollectionID,
		windowDays:   cfg.ExpiringWindowDays,
		now:          time.Now,
		log:          logger.Default(),
	}
	if r.collectionID == "" {
		r.collectionID = DefaultCollectionID
	}
	if r.windowDays <= 0 {
		r.windowDays = DefaultExpiringWindowDays
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("inventory_repo")
	return r
}

// CollectionID returns the collection the repository writes to.
func (r *Repo) CollectionID() string { return r.collectionID }

func (r *Repo) AddItem(ctx context.Context, item inventory.Item) result.Result[string] {
	if err := inventory.ValidateStoredQuantity(item.Quantity); err != nil {
		return result.Failure[string](err)
	}

	doc, err := r.store.CreateDocument(ctx, r.collectionID, id.Unique, toFields(item))
	if err != nil {
		r.log.WithContext(ctx).Errorw("error adding item", "name", item.Name, "error", err)
		return result.Failure[string](err)
	}
	r.log.WithContext(ctx).Debugw("item added", "id", doc.ID)
	return result.Success(doc.ID)
}

func (r *Repo) GetItem(ctx context.Context, itemID string) result.Result[*inventory.Item] {
	if id.IsBlank(itemID) {
		return result.Failure[*inventory.Item](apperror.NewValidation(inventory.MsgIDRequired))
	}

	doc, err := r.store.GetDocument(ctx, r.collectionID, itemID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return result.Success[*inventory.Item](nil)
		}
		r.log.WithContext(ctx).Errorw("error getting item", "id", itemID, "error", err)
		return result.Failure[*inventory.Item](err)
	}

	item := r.fromDocument(ctx, doc)
	return result.Success(&item)
}

func (r *Repo) UpdateItem(ctx context.Context, item inventory.Item) result.Result[result.Unit] {
	if !item.IsPersisted() {
		return result.Failure[result.Unit](apperror.NewValidation(inventory.MsgIDRequired))
	}
	if err := inventory.ValidateStoredQuantity(item.Quantity); err != nil {
		return result.Failure[result.Unit](err)
	}

	if _, err := r.store.UpdateDocument(ctx, r.collectionID, item.ID, toFields(item)); err != nil {
		r.log.WithContext(ctx).Errorw("error updating item", "id", item.ID, "error", err)
		return result.Failure[result.Unit](err)
	}
	return result.Ack()
}

func (r *Repo) DeleteItem(ctx context.Context, itemID string) result.Result[result.Unit] {
	if id.IsBlank(itemID) {
		return result.Failure[result.Unit](apperror.NewValidation(inventory.MsgIDRequired))
	}

	if err := r.store.DeleteDocument(ctx, r.collectionID, itemID); err != nil {
		r.log.WithContext(ctx).Errorw("error deleting item", "id", itemID, "error", err)
		return result.Failure[result.Unit](err)
	}
	return result.Ack()
}

func (r *Repo) GetAllItems(ctx context.Context) result.Result[[]inventory.Item] {
	r.log.WithContext(ctx).Debugw("fetching all items")

	items, err := r.listAll(ctx)
	if err != nil {
		r.log.WithContext(ctx).Errorw("error fetching all items", "error", err)
		return result.Failure[[]inventory.Item](err)
	}
	r.log.WithContext(ctx).Debugw("fetched all items", "count", len(items))
	return result.Success(items)
}

// GetExpiringSoonItems queries (now, now + window days]. The upper bound
// uses calendar-day arithmetic, so it is not always window*24h away.
func (r *Repo) GetExpiringSoonItems(ctx context.Context) result.Result[[]inventory.Item] {
	from, to := ExpiringWindow(r.now(), r.windowDays)
	lower, upper := FormatTimestamp(from), FormatTimestamp(to)
	r.log.WithContext(ctx).Debugw("querying expiring items", "after", lower, "until", upper)

	items, err := r.listAll(ctx,
		docstore.GreaterThan(fieldExpiryDate, lower),
		docstore.LessThanEqual(fieldExpiryDate, upper),
	)
	if err != nil {
		r.log.WithContext(ctx).Errorw("error fetching expiring items", "error", err)
		return result.Failure[[]inventory.Item](err)
	}
	return result.Success(items)
}

// ExpiringWindow returns the bounds of the expiring-soon window at now.
func ExpiringWindow(now time.Time, days int) (time.Time, time.Time) {
	return now, now.AddDate(0, 0, days)
}

// listAll pages through every matching document. Hosted stores cap page
// sizes, so a single list call would silently truncate larger households.
func (r *Repo) listAll(ctx context.Context, filters ...docstore.Query) ([]inventory.Item, error) {
	items := make([]inventory.Item, 0)
	for offset := 0; ; {
		queries := append(append([]docstore.Query{}, filters...),
			docstore.Limit(listPageSize), docstore.Offset(offset))

		page, err := r.store.ListDocuments(ctx, r.collectionID, queries...)
		if err != nil {
			return nil, err
		}
		for _, doc := range page.Documents {
			items = append(items, r.fromDocument(ctx, doc))
		}

		offset += len(page.Documents)
		if len(page.Documents) == 0 || offset >= page.Total {
			return items, nil
		}
	}
}

func toFields(item inventory.Item) docstore.Fields {
	f := docstore.Fields{
		fieldName:       item.Name,
		fieldCategory:   item.Category,
		fieldQuantity:   item.Quantity,
		fieldUnit:       nil,
		fieldExpiryDate: nil,
		fieldIsFavorite: item.IsFavorite,
	}
	if item.Unit != nil {
		f[fieldUnit] = *item.Unit
	}
	if item.ExpiryDate != nil {
		f[fieldExpiryDate] = FormatTimestamp(*item.ExpiryDate)
	}
	return f
}

func (r *Repo) fromDocument(ctx context.Context, doc docstore.Document) inventory.Item {
	item := inventory.Item{
		ID:         doc.ID,
		Name:       doc.Data.GetString(fieldName),
		Category:   doc.Data.GetString(fieldCategory),
		Quantity:   doc.Data.GetFloat(fieldQuantity),
		Unit:       doc.Data.GetStringPtr(fieldUnit),
		IsFavorite: doc.Data.GetBool(fieldIsFavorite),
	}
	if raw := doc.Data.GetString(fieldExpiryDate); raw != "" {
		t, err := ParseTimestamp(raw)
		if err != nil {
			r.log.WithContext(ctx).Warnw("error parsing expiry date", "id", doc.ID, "value", raw, "error", err)
		} else {
			item.ExpiryDate = &t
		}
	}
	return item
}
