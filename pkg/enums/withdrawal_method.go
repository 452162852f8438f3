package enums

import "fmt"

// WithdrawalMethod names the payout channel a candidate requested.
type WithdrawalMethod string

const (
	WithdrawalMethodMobileMoney  WithdrawalMethod = "mobile_money"
	WithdrawalMethodBankTransfer WithdrawalMethod = "bank_transfer"
	WithdrawalMethodCash         WithdrawalMethod = "cash"
)

var validWithdrawalMethods = []WithdrawalMethod{
	WithdrawalMethodMobileMoney,
	WithdrawalMethodBankTransfer,
	WithdrawalMethodCash,
}

// String implements fmt.Stringer.
func (m WithdrawalMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is known.
func (m WithdrawalMethod) IsValid() bool {
	for _, candidate := range validWithdrawalMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseWithdrawalMethod converts raw input into a WithdrawalMethod.
func ParseWithdrawalMethod(value string) (WithdrawalMethod, error) {
	for _, candidate := range validWithdrawalMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid withdrawal method %q", value)
}
