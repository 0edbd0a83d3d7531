package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"freshsave/internal/core/apperror"
	"freshsave/internal/domain/inventory"
)

// QuantityInput accepts a quantity sent either as a JSON number or as the
// raw text typed into a form field.
type QuantityInput string

func (q *QuantityInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*q = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*q = QuantityInput(s)
		return nil
	}
	*q = QuantityInput(b)
	return nil
}

// --- Request DTOs ---

// ItemRequest is the entry form payload for creating or editing an item.
type ItemRequest struct {
	Name       string        `json:"name"`
	Category   string        `json:"category"`
	Quantity   QuantityInput `json:"quantity"`
	Unit       *string       `json:"unit,omitempty"`
	ExpiryDate *time.Time    `json:"expiryDate,omitempty"`
	IsFavorite bool          `json:"isFavorite"`
}

// ToItem validates the form and builds the item. Field messages are
// collected so the client can show all of them at once.
func (r *ItemRequest) ToItem(itemID string) (inventory.Item, error) {
	item := inventory.Item{
		ID:         itemID,
		Name:       r.Name,
		Category:   r.Category,
		Unit:       r.Unit,
		ExpiryDate: r.ExpiryDate,
		IsFavorite: r.IsFavorite,
	}.Normalize()

	errs := inventory.FieldErrors{}
	q, err := inventory.ParseQuantity(string(r.Quantity))
	if err != nil {
		errs["quantity"] = quantityMessage(err)
	} else {
		item.Quantity = q
	}
	if err := item.Validate(); err != nil {
		for field, msg := range fieldMessages(err) {
			if _, set := errs[field]; !set {
				errs[field] = msg
			}
		}
	}
	if err := errs.Err(); err != nil {
		return inventory.Item{}, err
	}
	return item, nil
}

// QuantityRequest sets an absolute quantity.
type QuantityRequest struct {
	Quantity *float64 `json:"quantity" binding:"required"`
}

// AdjustRequest changes a quantity by Delta; zero means one step up.
type AdjustRequest struct {
	Delta float64 `json:"delta"`
}

// StepDelta returns the requested delta, defaulting to one step.
func (r AdjustRequest) StepDelta() float64 {
	if r.Delta == 0 {
		return inventory.QuantityStep
	}
	return r.Delta
}

// CategoryRequest selects the home screen category filter.
type CategoryRequest struct {
	Category string `json:"category" binding:"required"`
}

// --- Response DTOs ---

// ItemResponse is an item with its expiry classification.
type ItemResponse struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Category   string                 `json:"category"`
	Quantity   float64                `json:"quantity"`
	Unit       *string                `json:"unit"`
	ExpiryDate *time.Time             `json:"expiryDate"`
	IsFavorite bool                   `json:"isFavorite"`
	Status     inventory.ExpiryStatus `json:"status"`
}

// FromItem creates an ItemResponse classified at now.
func FromItem(it inventory.Item, now time.Time, windowDays int) ItemResponse {
	return ItemResponse{
		ID:         it.ID,
		Name:       it.Name,
		Category:   it.Category,
		Quantity:   it.Quantity,
		Unit:       it.Unit,
		ExpiryDate: it.ExpiryDate,
		IsFavorite: it.IsFavorite,
		Status:     it.Status(now, windowDays),
	}
}

// FromItems converts a list of items.
func FromItems(items []inventory.Item, now time.Time, windowDays int) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, FromItem(it, now, windowDays))
	}
	return out
}

// RecipeResponse is the suggested recipe placeholder.
type RecipeResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SuggestionsResponse lists values offered by the entry form.
type SuggestionsResponse struct {
	Categories []string `json:"categories"`
	Units      []string `json:"units"`
}

func quantityMessage(err error) string {
	if msg, ok := fieldMessages(err)["quantity"]; ok {
		return msg
	}
	return inventory.MsgQuantityInvalid
}

// fieldMessages extracts per-field messages from a validation error.
func fieldMessages(err error) map[string]string {
	out := map[string]string{}
	if appErr, ok := apperror.AsAppError(err); ok {
		for k, v := range appErr.Details {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
	}
	return out
}
