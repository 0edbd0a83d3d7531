// Package id generates document and request identifiers.
// UUIDv7 is time-ordered, so keys written by the embedded and SQL stores
// sort roughly by creation time.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// Unique asks the document store to assign the identifier itself.
const Unique = "unique()"

// New generates a new UUIDv7 string.
func New() string {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return v.String()
}

// IsBlank reports whether id denotes a not-yet-persisted record.
func IsBlank(id string) bool {
	return strings.TrimSpace(id) == ""
}

// Resolve returns a fresh id when requested is blank or Unique.
func Resolve(requested string) string {
	if IsBlank(requested) || requested == Unique {
		return New()
	}
	return requested
}
