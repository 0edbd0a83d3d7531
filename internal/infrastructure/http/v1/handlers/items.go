package handlers

import (
	"github.com/gin-gonic/gin"

	"freshsave/internal/core/apperror"
	"freshsave/internal/domain/home"
	"freshsave/internal/domain/inventory"
	"freshsave/internal/infrastructure/http/v1/dto"
)

// ItemHandler serves the inventory item endpoints. Reads go to the
// repository; writes go through the coordinator so home state stays
// consistent with what the API reports.
type ItemHandler struct {
	*BaseHandler
	repo  inventory.Repository
	coord *home.Coordinator
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, repo inventory.Repository, coord *home.Coordinator) *ItemHandler {
	return &ItemHandler{BaseHandler: base, repo: repo, coord: coord}
}

// List returns every item, optionally narrowed to one category.
// GET /api/v1/items?category=Dairy
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.repo.GetAllItems(c.Request.Context()).Get()
	if err != nil {
		h.Error(c, err)
		return
	}
	if category := c.Query("category"); category != "" {
		items = inventory.FilterByCategory(items, category)
	}
	h.OK(c, dto.NewListResponse(dto.FromItems(items, h.now(), h.windowDays)))
}

// Expiring returns items expiring within the configured window.
// GET /api/v1/items/expiring
func (h *ItemHandler) Expiring(c *gin.Context) {
	items, err := h.repo.GetExpiringSoonItems(c.Request.Context()).Get()
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(dto.FromItems(items, h.now(), h.windowDays)))
}

// Get returns one item.
// GET /api/v1/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	itemID, ok := h.PathID(c)
	if !ok {
		return
	}
	item, err := h.repo.GetItem(c.Request.Context(), itemID).Get()
	if err != nil {
		h.Error(c, err)
		return
	}
	if item == nil {
		h.Error(c, apperror.NewNotFound("item", itemID))
		return
	}
	h.OK(c, dto.FromItem(*item, h.now(), h.windowDays))
}

// Create adds an item.
// POST /api/v1/items?refresh=true
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.ItemRequest
	var q dto.RefreshQuery
	if !h.BindJSON(c, &req) || !h.BindQuery(c, &q) {
		return
	}
	item, err := req.ToItem("")
	if err != nil {
		h.Error(c, err)
		return
	}

	newID, err := h.coord.AddItem(c.Request.Context(), item).Get()
	if err != nil {
		h.Error(c, err)
		return
	}
	h.refresh(q)
	h.Created(c, newID)
}

// Update replaces an item.
// PUT /api/v1/items/:id?refresh=true
func (h *ItemHandler) Update(c *gin.Context) {
	itemID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.ItemRequest
	var q dto.RefreshQuery
	if !h.BindJSON(c, &req) || !h.BindQuery(c, &q) {
		return
	}
	item, err := req.ToItem(itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.coord.UpdateItem(c.Request.Context(), item).Err(); err != nil {
		h.Error(c, err)
		return
	}
	h.refresh(q)
	h.OK(c, dto.FromItem(item, h.now(), h.windowDays))
}

// Delete removes an item. Home state reloads on success.
// DELETE /api/v1/items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	itemID, ok := h.PathID(c)
	if !ok {
		return
	}
	if err := h.coord.DeleteItem(c.Request.Context(), itemID).Err(); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// SetQuantity writes an absolute quantity.
// PUT /api/v1/items/:id/quantity
func (h *ItemHandler) SetQuantity(c *gin.Context) {
	itemID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.QuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.respondItem(c, h.coord.UpdateItemQuantity(c.Request.Context(), itemID, *req.Quantity).Get)
}

// Adjust steps a quantity up or down, never below zero.
// POST /api/v1/items/:id/adjust
func (h *ItemHandler) Adjust(c *gin.Context) {
	itemID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.AdjustRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	h.respondItem(c, h.coord.AdjustQuantity(c.Request.Context(), itemID, req.StepDelta()).Get)
}

// ToggleFavorite flips the favorite flag.
// POST /api/v1/items/:id/favorite
func (h *ItemHandler) ToggleFavorite(c *gin.Context) {
	itemID, ok := h.PathID(c)
	if !ok {
		return
	}
	h.respondItem(c, h.coord.ToggleFavorite(c.Request.Context(), itemID).Get)
}

// Suggestions lists categories and units offered by the entry form.
// GET /api/v1/suggestions
func (h *ItemHandler) Suggestions(c *gin.Context) {
	h.OK(c, dto.SuggestionsResponse{
		Categories: h.coord.CategorySuggestions().Get(),
		Units:      inventory.UnitSuggestions(),
	})
}

func (h *ItemHandler) respondItem(c *gin.Context, get func() (inventory.Item, error)) {
	item, err := get()
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromItem(item, h.now(), h.windowDays))
}

func (h *ItemHandler) refresh(q dto.RefreshQuery) {
	if q.Refresh {
		h.coord.TriggerLoadItems()
	}
}
