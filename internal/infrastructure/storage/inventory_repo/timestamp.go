package inventory_repo

import "time"

const (
	// writeLayout is how expiry dates are stored: UTC, millisecond
	// precision, literal Z suffix.
	writeLayout = "2006-01-02T15:04:05.000Z"

	// readLayout also accepts numeric offsets such as +00:00, which the
	// hosted store returns for datetime attributes.
	readLayout = "2006-01-02T15:04:05.999Z07:00"
)

// FormatTimestamp renders t in the store's write format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(writeLayout)
}

// ParseTimestamp parses a stored timestamp and normalizes it to UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(readLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
