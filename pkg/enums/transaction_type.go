package enums

import "fmt"

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionTypeRegistrationFee TransactionType = "registration_fee"
	TransactionTypeDebateWinnings  TransactionType = "debate_winnings"
	TransactionTypeWithdrawal      TransactionType = "withdrawal"
	TransactionTypeRefund          TransactionType = "refund"
	TransactionTypePenalty         TransactionType = "penalty"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeRegistrationFee,
	TransactionTypeDebateWinnings,
	TransactionTypeWithdrawal,
	TransactionTypeRefund,
	TransactionTypePenalty,
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is known.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionType converts raw input into a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
