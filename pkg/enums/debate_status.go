package enums

import "fmt"

// DebateStatus tracks the lifecycle of a debate.
type DebateStatus string

const (
	DebateStatusPending    DebateStatus = "pending"
	DebateStatusInProgress DebateStatus = "in_progress"
	DebateStatusCompleted  DebateStatus = "completed"
	DebateStatusCancelled  DebateStatus = "cancelled"
)

var validDebateStatuses = []DebateStatus{
	DebateStatusPending,
	DebateStatusInProgress,
	DebateStatusCompleted,
	DebateStatusCancelled,
}

// String implements fmt.Stringer.
func (s DebateStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s DebateStatus) IsValid() bool {
	for _, candidate := range validDebateStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDebateStatus converts raw input into a DebateStatus.
func ParseDebateStatus(value string) (DebateStatus, error) {
	for _, candidate := range validDebateStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid debate status %q", value)
}
