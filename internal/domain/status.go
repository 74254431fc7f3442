package domain

// Status represents the activity state of a deck, card, or user.
// The only legal transition is StatusActive -> StatusDisabled; disabling
// is terminal and idempotent. Entities are never physically deleted.
type Status string

const (
	// StatusActive marks an entity as live and usable.
	StatusActive Status = "active"

	// StatusDisabled marks an entity as retired. Disabled entities are kept
	// for lineage/history but excluded from normal operations.
	StatusDisabled Status = "disabled"
)

// IsActive reports whether the status is StatusActive.
func (s Status) IsActive() bool {
	return s == StatusActive
}

// Disable returns the disabled status. Calling it on an already-disabled
// status yields the same result, making the transition idempotent.
func (s Status) Disable() Status {
	return StatusDisabled
}

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s Status) bool {
	return s == StatusActive || s == StatusDisabled
}
