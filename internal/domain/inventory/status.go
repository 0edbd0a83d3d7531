package inventory

import "time"

// ExpiryStatus classifies an item by its expiry date.
type ExpiryStatus string

const (
	StatusExpired      ExpiryStatus = "expired"
	StatusExpiringSoon ExpiryStatus = "expiring_soon"
	StatusFresh        ExpiryStatus = "fresh"
	// StatusNoExpiry marks items without an expiry date.
	StatusNoExpiry ExpiryStatus = "none"
)

// Status reports how the item's expiry date relates to now, using the same
// (now, now + windowDays] window as the expiring-soon query.
func (i Item) Status(now time.Time, windowDays int) ExpiryStatus {
	if i.ExpiryDate == nil {
		return StatusNoExpiry
	}
	exp := *i.ExpiryDate
	switch {
	case !exp.After(now):
		return StatusExpired
	case !exp.After(now.AddDate(0, 0, windowDays)):
		return StatusExpiringSoon
	default:
		return StatusFresh
	}
}
