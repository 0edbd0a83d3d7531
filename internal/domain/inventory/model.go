// Package inventory contains the household item entity, its repository
// contract and the small pieces of derived logic (recipes, suggestions,
// quantity steps) the home screen coordinator builds on.
package inventory

import (
	"strings"
	"time"

	"freshsave/internal/core/apperror"
	"freshsave/internal/core/id"
)

// DefaultQuantity is the quantity of a freshly created item.
const DefaultQuantity = 1.0

// Item is a single food item tracked in the household inventory.
//
// ID is empty until the store assigns one; after that it is immutable and
// the only identity used for lookup, update and delete.
type Item struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	Quantity   float64    `json:"quantity"`
	Unit       *string    `json:"unit,omitempty"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
	IsFavorite bool       `json:"isFavorite"`
}

// NewItem creates a transient item with default quantity.
func NewItem(name, category string) Item {
	return Item{
		Name:     name,
		Category: category,
		Quantity: DefaultQuantity,
	}
}

// IsPersisted reports whether the store has assigned an ID.
func (i Item) IsPersisted() bool {
	return !id.IsBlank(i.ID)
}

// WithQuantity returns a copy with quantity replaced.
func (i Item) WithQuantity(q float64) Item {
	i.Quantity = q
	return i
}

// WithFavoriteToggled returns a copy with the favorite flag flipped.
func (i Item) WithFavoriteToggled() Item {
	i.IsFavorite = !i.IsFavorite
	return i
}

// IsExpired reports whether the expiry date lies strictly before now.
func (i Item) IsExpired(now time.Time) bool {
	return i.ExpiryDate != nil && i.ExpiryDate.Before(now)
}

// Equal compares all fields, including pointer targets.
func (i Item) Equal(o Item) bool {
	return i.ID == o.ID && i.SameContent(o)
}

// SameContent compares every field except ID.
func (i Item) SameContent(o Item) bool {
	if i.Name != o.Name || i.Category != o.Category || i.Quantity != o.Quantity || i.IsFavorite != o.IsFavorite {
		return false
	}
	if (i.Unit == nil) != (o.Unit == nil) || (i.Unit != nil && *i.Unit != *o.Unit) {
		return false
	}
	if (i.ExpiryDate == nil) != (o.ExpiryDate == nil) || (i.ExpiryDate != nil && !i.ExpiryDate.Equal(*o.ExpiryDate)) {
		return false
	}
	return true
}

// Validation messages shown next to the entry form fields.
const (
	MsgNameRequired      = "Item name cannot be empty"
	MsgCategoryRequired  = "Category cannot be empty"
	MsgQuantityRequired  = "Quantity cannot be empty"
	MsgQuantityInvalid   = "Invalid quantity format"
	MsgQuantityPositive  = "Quantity must be positive"
	MsgQuantityNegative  = "Quantity cannot be negative"
	MsgIDRequired        = "Item id cannot be empty"
	MsgQuantityUnchanged = "Quantity is already at its minimum"
)

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

// Validate checks the fields an entry form requires. Quantity must be
// strictly positive for entry, while stored items may reach zero.
func (i Item) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(i.Name) == "" {
		errs["name"] = MsgNameRequired
	}
	if strings.TrimSpace(i.Category) == "" {
		errs["category"] = MsgCategoryRequired
	}
	if i.Quantity <= 0 {
		errs["quantity"] = MsgQuantityPositive
	}
	return errs.Err()
}

// Err converts collected field errors into a validation AppError, or nil.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	e := apperror.NewValidation("Invalid item")
	for k, v := range f {
		e.WithDetail(k, v)
	}
	return e
}

// Normalize trims text fields and drops an empty unit.
func (i Item) Normalize() Item {
	i.Name = strings.TrimSpace(i.Name)
	i.Category = strings.TrimSpace(i.Category)
	if i.Unit != nil {
		u := strings.TrimSpace(*i.Unit)
		if u == "" {
			i.Unit = nil
		} else {
			i.Unit = &u
		}
	}
	return i
}
