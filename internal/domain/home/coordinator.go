// Package home holds the home screen state coordinator: observable item
// lists and derived values, refreshed from the inventory repository.
package home

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"freshsave/internal/core/apperror"
	"freshsave/internal/core/id"
	"freshsave/internal/core/result"
	"freshsave/internal/core/state"
	"freshsave/internal/domain/inventory"
	"freshsave/pkg/logger"
)

// Coordinator owns the home screen state. Every slot is written only here;
// consumers read or subscribe through the Observable accessors.
//
// Failures never escape as panics: operations return a Result and reset
// the affected slots. Cancellation is the exception: it is returned from
// LoadItems and leaves state untouched.
type Coordinator struct {
	repo       inventory.Repository
	log        *logger.Logger
	now        func() time.Time
	windowDays int

	scope  context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu serializes multi-slot writes so derived slots stay consistent.
	mu sync.Mutex

	allItems            *state.Slot[[]inventory.Item]
	expiringSoon        *state.Slot[[]inventory.Item]
	totalCount          *state.Slot[int]
	savings             *state.Slot[string]
	categories          *state.Slot[[]string]
	selectedCategory    *state.Slot[string]
	suggestedRecipe     *state.Slot[*inventory.RecipePlaceholder]
	itemToEdit          *state.Slot[*inventory.Item]
	displayedItems      *state.Slot[[]inventory.Item]
	expiringSoonCount   *state.Slot[int]
	categorySuggestions *state.Slot[[]string]
}

// DefaultExpiringWindowDays mirrors the repository's default window.
const DefaultExpiringWindowDays = 7

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithClock sets the time source used for expiry status.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithExpiringWindow sets the window, in days, used to classify items as
// expiring soon in snapshots. It should match the repository's window.
func WithExpiringWindow(days int) Option {
	return func(c *Coordinator) { c.windowDays = days }
}

// NewCoordinator creates a coordinator with empty state. Call
// TriggerLoadItems to populate it and Close to stop background loads.
func NewCoordinator(repo inventory.Repository, opts ...Option) *Coordinator {
	scope, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		repo:       repo,
		log:        logger.Default(),
		now:        time.Now,
		windowDays: DefaultExpiringWindowDays,
		scope:      scope,
		cancel:     cancel,

		allItems:            state.NewSlot([]inventory.Item{}),
		expiringSoon:        state.NewSlot([]inventory.Item{}),
		totalCount:          state.NewSlot(0),
		savings:             state.NewSlot(inventory.SavingsPlaceholder()),
		categories:          state.NewSlot([]string{}),
		selectedCategory:    state.NewSlot(inventory.AllCategories),
		suggestedRecipe:     state.NewSlot[*inventory.RecipePlaceholder](nil),
		itemToEdit:          state.NewSlot[*inventory.Item](nil),
		displayedItems:      state.NewSlot([]inventory.Item{}),
		expiringSoonCount:   state.NewSlot(0),
		categorySuggestions: state.NewSlot(inventory.CategorySuggestions(nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("home")
	return c
}

func (c *Coordinator) AllItems() state.Observable[[]inventory.Item]     { return c.allItems }
func (c *Coordinator) ExpiringSoon() state.Observable[[]inventory.Item] { return c.expiringSoon }
func (c *Coordinator) TotalCount() state.Observable[int]                { return c.totalCount }
func (c *Coordinator) Savings() state.Observable[string]                { return c.savings }
func (c *Coordinator) Categories() state.Observable[[]string]           { return c.categories }
func (c *Coordinator) SelectedCategory() state.Observable[string]       { return c.selectedCategory }
func (c *Coordinator) SuggestedRecipe() state.Observable[*inventory.RecipePlaceholder] {
	return c.suggestedRecipe
}
func (c *Coordinator) ItemToEdit() state.Observable[*inventory.Item]      { return c.itemToEdit }
func (c *Coordinator) DisplayedItems() state.Observable[[]inventory.Item] { return c.displayedItems }
func (c *Coordinator) ExpiringSoonCount() state.Observable[int]           { return c.expiringSoonCount }
func (c *Coordinator) CategorySuggestions() state.Observable[[]string]    { return c.categorySuggestions }

// TriggerLoadItems starts a load cycle in the background on the
// coordinator's own scope and returns immediately.
func (c *Coordinator) TriggerLoadItems() {
	if c.scope.Err() != nil {
		c.log.Warnw("load requested after close, ignoring")
		return
	}
	c.log.Debugw("triggering load")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		// cancellation is logged inside LoadItems
		_ = c.LoadItems(c.scope)
	}()
}

// Wait blocks until every triggered load has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight loads and waits for them.
func (c *Coordinator) Close() {
	c.cancel()
	c.wg.Wait()
}

// LoadItems runs one load cycle: the all-items and expiring-soon fetches
// run concurrently and each updates its own slots when it completes.
//
// A failed fetch resets its slots to empty. If ctx is cancelled the
// cancellation error is returned and slots the cancelled fetch owns keep
// their previous values.
func (c *Coordinator) LoadItems(ctx context.Context) error {
	log := c.log.WithContext(ctx)
	log.Debugw("load started")

	var (
		g                errgroup.Group
		allOK, expiredOK bool
		panicked         error
	)
	var panicOnce sync.Once
	guard := func(fn func() error) func() error {
		return func() error {
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { panicked = fmt.Errorf("load panicked: %v", r) })
				}
			}()
			return fn()
		}
	}

	g.Go(guard(func() (err error) {
		allOK, err = c.applyAllItems(ctx, c.repo.GetAllItems(ctx))
		return err
	}))
	g.Go(guard(func() (err error) {
		expiredOK, err = c.applyExpiring(ctx, c.repo.GetExpiringSoonItems(ctx))
		return err
	}))
	err := g.Wait()

	if err != nil {
		log.Warnw("load cancelled", "all_items_updated", allOK, "expiring_updated", expiredOK, "error", err)
		return err
	}
	if panicked != nil {
		log.Errorw("load failed", "error", panicked)
		c.resetAll()
		return nil
	}
	log.Debugw("load finished", "all_items_updated", allOK, "expiring_updated", expiredOK)
	return nil
}

func isCancellation(ctx context.Context, err error) bool {
	return apperror.IsCanceled(err) || (ctx.Err() != nil && errors.Is(err, ctx.Err()))
}

func (c *Coordinator) applyAllItems(ctx context.Context, res result.Result[[]inventory.Item]) (bool, error) {
	items, err := res.Get()
	if err != nil {
		if isCancellation(ctx, err) {
			return false, err
		}
		c.log.WithContext(ctx).Errorw("fetching all items failed", "error", err)
		c.mu.Lock()
		defer c.mu.Unlock()
		c.setAllItemsLocked([]inventory.Item{})
		return false, nil
	}

	c.log.WithContext(ctx).Debugw("fetched all items", "count", len(items))
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setAllItemsLocked(items)
	return true, nil
}

func (c *Coordinator) applyExpiring(ctx context.Context, res result.Result[[]inventory.Item]) (bool, error) {
	items, err := res.Get()
	if err != nil {
		if isCancellation(ctx, err) {
			return false, err
		}
		c.log.WithContext(ctx).Errorw("fetching expiring items failed", "error", err)
		c.mu.Lock()
		defer c.mu.Unlock()
		c.setExpiringLocked([]inventory.Item{})
		c.suggestedRecipe.Set(nil)
		return false, nil
	}

	c.log.WithContext(ctx).Debugw("fetched expiring items", "count", len(items))
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setExpiringLocked(items)
	c.suggestedRecipe.Set(inventory.SuggestRecipe(items))
	return true, nil
}

func (c *Coordinator) resetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setAllItemsLocked([]inventory.Item{})
	c.setExpiringLocked([]inventory.Item{})
	c.suggestedRecipe.Set(nil)
}

// setAllItemsLocked replaces the full list and everything derived from it.
func (c *Coordinator) setAllItemsLocked(items []inventory.Item) {
	if items == nil {
		items = []inventory.Item{}
	}
	cats := inventory.DistinctCategories(items)
	c.allItems.Set(items)
	c.totalCount.Set(len(items))
	c.categories.Set(cats)
	c.categorySuggestions.Set(inventory.CategorySuggestions(cats))
	c.displayedItems.Set(inventory.FilterByCategory(items, c.selectedCategory.Get()))
}

func (c *Coordinator) setExpiringLocked(items []inventory.Item) {
	if items == nil {
		items = []inventory.Item{}
	}
	c.expiringSoon.Set(items)
	c.expiringSoonCount.Set(len(items))
}

// OnCategorySelected changes the category filter of the displayed list.
func (c *Coordinator) OnCategorySelected(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedCategory.Set(category)
	c.displayedItems.Set(inventory.FilterByCategory(c.allItems.Get(), category))
}

// AddItem persists a new item. State is not reloaded; callers signal a
// refresh once their edit flow completes.
func (c *Coordinator) AddItem(ctx context.Context, item inventory.Item) result.Result[string] {
	res := c.repo.AddItem(ctx, item)
	res.OnSuccess(func(newID string) {
		c.log.WithContext(ctx).Infow("item added", "id", newID)
	}).OnFailure(func(err error) {
		c.log.WithContext(ctx).Errorw("failed to add item", "name", item.Name, "error", err)
	})
	return res
}

// UpdateItem replaces a stored item. A blank ID is refused without calling
// the repository. State is not reloaded.
func (c *Coordinator) UpdateItem(ctx context.Context, item inventory.Item) result.Result[result.Unit] {
	if id.IsBlank(item.ID) {
		c.log.WithContext(ctx).Errorw("item id is blank, cannot update", "name", item.Name)
		return result.Failure[result.Unit](apperror.NewValidation(inventory.MsgIDRequired))
	}

	res := c.repo.UpdateItem(ctx, item)
	res.OnSuccess(func(result.Unit) {
		c.log.WithContext(ctx).Infow("item updated", "id", item.ID)
	}).OnFailure(func(err error) {
		c.log.WithContext(ctx).Errorw("failed to update item", "id", item.ID, "error", err)
	})
	return res
}

// DeleteItem removes an item and, on success, triggers a reload.
func (c *Coordinator) DeleteItem(ctx context.Context, itemID string) result.Result[result.Unit] {
	res := c.repo.DeleteItem(ctx, itemID)
	res.OnSuccess(func(result.Unit) {
		c.log.WithContext(ctx).Infow("item deleted", "id", itemID)
		c.TriggerLoadItems()
	}).OnFailure(func(err error) {
		c.log.WithContext(ctx).Errorw("failed to delete item", "id", itemID, "error", err)
	})
	return res
}

// UpdateItemQuantity reads the stored item, writes it back with the new
// quantity and patches the matching entries of the in-memory lists.
// Derived counts and categories stay as they are until the next load.
func (c *Coordinator) UpdateItemQuantity(ctx context.Context, itemID string, quantity float64) result.Result[inventory.Item] {
	if err := inventory.ValidateStoredQuantity(quantity); err != nil {
		c.log.WithContext(ctx).Errorw("refusing negative quantity", "id", itemID, "quantity", quantity)
		return result.Failure[inventory.Item](err)
	}
	return c.modify(ctx, itemID, "quantity", func(it inventory.Item) (inventory.Item, error) {
		return it.WithQuantity(quantity), nil
	})
}

// AdjustQuantity changes the stored quantity by delta, clamped at zero.
// An adjustment that would not change the value is rejected.
func (c *Coordinator) AdjustQuantity(ctx context.Context, itemID string, delta float64) result.Result[inventory.Item] {
	return c.modify(ctx, itemID, "quantity", func(it inventory.Item) (inventory.Item, error) {
		next, err := inventory.AdjustQuantity(it.Quantity, delta)
		if err != nil {
			return it, err
		}
		return it.WithQuantity(next), nil
	})
}

// ToggleFavorite flips the favorite flag of a stored item.
func (c *Coordinator) ToggleFavorite(ctx context.Context, itemID string) result.Result[inventory.Item] {
	return c.modify(ctx, itemID, "favorite", func(it inventory.Item) (inventory.Item, error) {
		return it.WithFavoriteToggled(), nil
	})
}

// modify is the read-modify-write cycle shared by single-field edits.
func (c *Coordinator) modify(ctx context.Context, itemID, what string, change func(inventory.Item) (inventory.Item, error)) result.Result[inventory.Item] {
	log := c.log.WithContext(ctx).With("id", itemID, "change", what)

	current, err := c.repo.GetItem(ctx, itemID).Get()
	if err != nil {
		log.Errorw("failed to get item before update", "error", err)
		return result.Failure[inventory.Item](err)
	}
	if current == nil {
		log.Errorw("item not found, cannot update")
		return result.Failure[inventory.Item](apperror.NewNotFound("item", itemID))
	}

	updated, err := change(*current)
	if err != nil {
		log.Infow("update rejected", "reason", err)
		return result.Failure[inventory.Item](err)
	}

	if err := c.repo.UpdateItem(ctx, updated).Err(); err != nil {
		log.Errorw("failed to update item", "error", err)
		return result.Failure[inventory.Item](err)
	}

	c.patch(updated)
	log.Debugw("item updated in place")
	return result.Success(updated)
}

// patch replaces entries with a matching ID in both lists.
func (c *Coordinator) patch(updated inventory.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	replace := func(items []inventory.Item) ([]inventory.Item, bool) {
		out := make([]inventory.Item, len(items))
		found := false
		for i, it := range items {
			if it.ID == updated.ID {
				out[i] = updated
				found = true
			} else {
				out[i] = it
			}
		}
		return out, found
	}

	if all, ok := replace(c.allItems.Get()); ok {
		c.allItems.Set(all)
		c.displayedItems.Set(inventory.FilterByCategory(all, c.selectedCategory.Get()))
	}
	if exp, ok := replace(c.expiringSoon.Get()); ok {
		c.expiringSoon.Set(exp)
	}
}

// LoadItemForEditing fetches an item into the edit slot. A missing item or
// a failure leaves the slot empty.
func (c *Coordinator) LoadItemForEditing(ctx context.Context, itemID string) result.Result[*inventory.Item] {
	res := c.repo.GetItem(ctx, itemID)
	res.OnSuccess(func(it *inventory.Item) {
		c.itemToEdit.Set(it)
		if it == nil {
			c.log.WithContext(ctx).Warnw("no item found for editing", "id", itemID)
		}
	}).OnFailure(func(err error) {
		c.itemToEdit.Set(nil)
		c.log.WithContext(ctx).Errorw("failed to load item for editing", "id", itemID, "error", err)
	})
	return res
}

// ClearItemToEdit empties the edit slot.
func (c *Coordinator) ClearItemToEdit() {
	c.itemToEdit.Set(nil)
}

// Snapshot is a consistent copy of every slot at one instant.
type Snapshot struct {
	AllItems            []inventory.Item
	ExpiringSoon        []inventory.Item
	DisplayedItems      []inventory.Item
	TotalCount          int
	ExpiringSoonCount   int
	Savings             string
	Categories          []string
	CategorySuggestions []string
	SelectedCategory    string
	SuggestedRecipe     *inventory.RecipePlaceholder
	ItemToEdit          *inventory.Item
	TakenAt             time.Time
}

// Snapshot returns the current state of all slots.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		AllItems:            c.allItems.Get(),
		ExpiringSoon:        c.expiringSoon.Get(),
		DisplayedItems:      c.displayedItems.Get(),
		TotalCount:          c.totalCount.Get(),
		ExpiringSoonCount:   c.expiringSoonCount.Get(),
		Savings:             c.savings.Get(),
		Categories:          c.categories.Get(),
		CategorySuggestions: c.categorySuggestions.Get(),
		SelectedCategory:    c.selectedCategory.Get(),
		SuggestedRecipe:     c.suggestedRecipe.Get(),
		ItemToEdit:          c.itemToEdit.Get(),
		TakenAt:             c.now(),
	}
}

// Status classifies an item relative to the snapshot time.
func (s Snapshot) Status(it inventory.Item, windowDays int) inventory.ExpiryStatus {
	return it.Status(s.TakenAt, windowDays)
}

// WindowDays returns the expiring-soon window used for classification.
func (c *Coordinator) WindowDays() int { return c.windowDays }
