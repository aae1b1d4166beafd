package enums

import "fmt"

// EntryStatus gates whether a stock lot counts toward sellable inventory.
type EntryStatus string

const (
	EntryStatusPending EntryStatus = "pending"
	EntryStatusDone    EntryStatus = "done"
)

var validEntryStatuses = []EntryStatus{
	EntryStatusPending,
	EntryStatusDone,
}

// String implements fmt.Stringer.
func (e EntryStatus) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EntryStatus.
func (e EntryStatus) IsValid() bool {
	for _, candidate := range validEntryStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEntryStatus converts raw input into an EntryStatus.
func ParseEntryStatus(value string) (EntryStatus, error) {
	for _, candidate := range validEntryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entry status %q", value)
}
