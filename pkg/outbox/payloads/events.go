package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/pkg/enums"
)

// CandidateRegisteredEvent signals a new application with its pending fee entry.
type CandidateRegisteredEvent struct {
	CandidateID   uuid.UUID      `json:"candidate_id"`
	Category      enums.Category `json:"category"`
	Fee           int64          `json:"fee"`
	TransactionID uuid.UUID      `json:"transaction_id"`
	Reference     string         `json:"reference"`
}

// PaymentValidatedEvent is emitted when a registration fee is validated and the
// candidate becomes eligible.
type PaymentValidatedEvent struct {
	CandidateID   uuid.UUID `json:"candidate_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Reference     string    `json:"reference"`
	Amount        int64     `json:"amount"`
	ValidatedBy   uuid.UUID `json:"validated_by"`
	ValidatedAt   time.Time `json:"validated_at"`
}

// WithdrawalRequestedEvent carries the pending payout details.
type WithdrawalRequestedEvent struct {
	CandidateID   uuid.UUID              `json:"candidate_id"`
	TransactionID uuid.UUID              `json:"transaction_id"`
	Reference     string                 `json:"reference"`
	Amount        int64                  `json:"amount"`
	Method        enums.WithdrawalMethod `json:"method"`
	NewBalance    int64                  `json:"new_balance"`
}

// TransactionResolvedEvent reports a ledger entry reaching a terminal status.
type TransactionResolvedEvent struct {
	CandidateID     uuid.UUID               `json:"candidate_id"`
	TransactionID   uuid.UUID               `json:"transaction_id"`
	Reference       string                  `json:"reference"`
	Type            enums.TransactionType   `json:"type"`
	Status          enums.TransactionStatus `json:"status"`
	Amount          int64                   `json:"amount"`
	RejectionReason string                  `json:"rejection_reason,omitempty"`
}

// DebateCreatedEvent signals a new debate with its funded pool.
type DebateCreatedEvent struct {
	DebateID      uuid.UUID           `json:"debate_id"`
	Category      enums.Category      `json:"category"`
	ParticipantID []uuid.UUID         `json:"participant_ids"`
	TotalPool     int64               `json:"total_pool"`
	StakePerHead  int64               `json:"stake_per_head"`
	FundingSource enums.FundingSource `json:"funding_source"`
}

// DebateClosedEvent surfaces the settlement outcome when a debate completes.
type DebateClosedEvent struct {
	DebateID     uuid.UUID `json:"debate_id"`
	WinnerID     uuid.UUID `json:"winner_id"`
	WinnerAmount int64     `json:"winner_amount"`
	OrganizerFee int64     `json:"organizer_fee"`
	TotalPool    int64     `json:"total_pool"`
	ClosedBy     uuid.UUID `json:"closed_by"`
	ClosedAt     time.Time `json:"closed_at"`
}
