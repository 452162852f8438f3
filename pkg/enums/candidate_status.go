package enums

import "fmt"

// CandidateStatus tracks the administrative lifecycle of a candidate.
type CandidateStatus string

const (
	CandidateStatusPendingPayment CandidateStatus = "pending_payment"
	CandidateStatusEligible       CandidateStatus = "eligible"
	CandidateStatusAdmitted       CandidateStatus = "admitted"
	CandidateStatusEliminated     CandidateStatus = "eliminated"
	CandidateStatusSuspended      CandidateStatus = "suspended"
)

var validCandidateStatuses = []CandidateStatus{
	CandidateStatusPendingPayment,
	CandidateStatusEligible,
	CandidateStatusAdmitted,
	CandidateStatusEliminated,
	CandidateStatusSuspended,
}

// String implements fmt.Stringer.
func (s CandidateStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s CandidateStatus) IsValid() bool {
	for _, candidate := range validCandidateStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCandidateStatus converts raw input into a CandidateStatus.
func ParseCandidateStatus(value string) (CandidateStatus, error) {
	for _, candidate := range validCandidateStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid candidate status %q", value)
}
