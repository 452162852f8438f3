package ledger

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/arbrepalabres/backend/pkg/enums"
)

const referenceSuffixBytes = 6

var referencePrefixes = map[enums.TransactionType]string{
	enums.TransactionTypeRegistrationFee: "REG",
	enums.TransactionTypeDebateWinnings:  "WIN",
	enums.TransactionTypeWithdrawal:      "WDL",
	enums.TransactionTypeRefund:          "RFD",
	enums.TransactionTypePenalty:         "PEN",
}

// GenerateReference builds the externally quoted identifier for a ledger
// entry. The random suffix keeps references unique across concurrent requests
// landing in the same nanosecond; the unique index on the column backstops it.
func GenerateReference(txType enums.TransactionType) (string, error) {
	prefix, ok := referencePrefixes[txType]
	if !ok {
		prefix = "TXN"
	}

	buf := make([]byte, referenceSuffixBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating reference suffix: %w", err)
	}

	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UTC().UnixNano(), hex.EncodeToString(buf)), nil
}
