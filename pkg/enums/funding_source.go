package enums

import "fmt"

// FundingSource records where a debate's prize pool came from.
type FundingSource string

const (
	// FundingSourceRegistration pools pre-paid registration fees.
	FundingSourceRegistration FundingSource = "registration"
	// FundingSourceStake pools per-participant stakes debited at creation.
	FundingSourceStake FundingSource = "stake"
)

var validFundingSources = []FundingSource{
	FundingSourceRegistration,
	FundingSourceStake,
}

// String implements fmt.Stringer.
func (f FundingSource) String() string {
	return string(f)
}

// IsValid reports whether the value is known.
func (f FundingSource) IsValid() bool {
	for _, candidate := range validFundingSources {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFundingSource converts raw input into a FundingSource.
func ParseFundingSource(value string) (FundingSource, error) {
	for _, candidate := range validFundingSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid funding source %q", value)
}
