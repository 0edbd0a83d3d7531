package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"freshsave/internal/core/state"
	"freshsave/internal/domain/home"
	"freshsave/internal/infrastructure/http/v1/dto"
	"freshsave/pkg/logger"
)

// streamKeepAlive is how often an idle state stream sends a ping event.
const streamKeepAlive = 15 * time.Second

// HomeHandler exposes the home screen state held by the coordinator.
type HomeHandler struct {
	*BaseHandler
	coord *home.Coordinator
}

// NewHomeHandler creates a new home handler.
func NewHomeHandler(base *BaseHandler, coord *home.Coordinator) *HomeHandler {
	return &HomeHandler{BaseHandler: base, coord: coord}
}

func (h *HomeHandler) snapshot() dto.HomeResponse {
	return dto.FromSnapshot(h.coord.Snapshot(), h.windowDays)
}

// Get returns the current state.
// GET /api/v1/home
func (h *HomeHandler) Get(c *gin.Context) {
	h.OK(c, h.snapshot())
}

// Refresh reloads both lists. With wait=true the reload runs within the
// request and the new state is returned; otherwise it runs in the
// background.
// POST /api/v1/home/refresh?wait=true
func (h *HomeHandler) Refresh(c *gin.Context) {
	if c.Query("wait") != "true" {
		h.coord.TriggerLoadItems()
		h.Accepted(c, "reload started")
		return
	}
	if err := h.coord.LoadItems(c.Request.Context()); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.snapshot())
}

// SelectCategory sets the category filter of the displayed list.
// PUT /api/v1/home/category
func (h *HomeHandler) SelectCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.coord.OnCategorySelected(req.Category)
	h.OK(c, h.snapshot())
}

// LoadForEditing puts an item into the edit slot.
// POST /api/v1/home/editing/:id
func (h *HomeHandler) LoadForEditing(c *gin.Context) {
	itemID, ok := h.PathID(c)
	if !ok {
		return
	}
	if err := h.coord.LoadItemForEditing(c.Request.Context(), itemID).Err(); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.snapshot())
}

// ClearEditing empties the edit slot.
// DELETE /api/v1/home/editing
func (h *HomeHandler) ClearEditing(c *gin.Context) {
	h.coord.ClearItemToEdit()
	h.NoContent(c)
}

// Stream pushes a "home" server-sent event with the full state whenever
// any slot changes. The first event carries the current state.
// GET /api/v1/home/stream
func (h *HomeHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	notify := make(chan struct{}, 1)
	cancels := []func(){
		forward(h.coord.AllItems(), notify),
		forward(h.coord.ExpiringSoon(), notify),
		forward(h.coord.SelectedCategory(), notify),
		forward(h.coord.SuggestedRecipe(), notify),
		forward(h.coord.ItemToEdit(), notify),
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	log.Debugw("home stream opened")
	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			log.Debugw("home stream closed")
			return false
		case <-notify:
			c.SSEvent("home", h.snapshot())
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}

// forward collapses every value published by obs into a single pending
// notification. The returned func stops forwarding.
func forward[T any](obs state.Observable[T], notify chan<- struct{}) func() {
	ch, cancel := obs.Subscribe()
	go func() {
		for range ch {
			select {
			case notify <- struct{}{}:
			default:
			}
		}
	}()
	return cancel
}
