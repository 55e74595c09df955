package enums

import "fmt"

// DraftStatus tracks the save state machine of a draft. A draft is editable
// while in "editing"; moving to "submitting" guards against re-entrant
// saves, and "synced" marks a draft whose last save round-trip completed.
type DraftStatus string

const (
	DraftStatusEditing    DraftStatus = "editing"
	DraftStatusSubmitting DraftStatus = "submitting"
	DraftStatusSynced     DraftStatus = "synced"
)

var validDraftStatuses = []DraftStatus{
	DraftStatusEditing,
	DraftStatusSubmitting,
	DraftStatusSynced,
}

// String implements fmt.Stringer.
func (d DraftStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DraftStatus.
func (d DraftStatus) IsValid() bool {
	for _, candidate := range validDraftStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDraftStatus converts raw input into a DraftStatus.
func ParseDraftStatus(value string) (DraftStatus, error) {
	for _, candidate := range validDraftStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid draft status %q", value)
}
