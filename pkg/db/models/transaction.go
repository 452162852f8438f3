package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/pkg/enums"
)

// Transaction records one money movement tied to a candidate. Entries are
// append-only: after creation only the resolution fields may change, and only
// through the ledger state machine.
type Transaction struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Reference       string                  `gorm:"column:reference;not null;uniqueIndex" json:"reference"`
	CandidateID     uuid.UUID               `gorm:"column:candidate_id;type:uuid;not null;index" json:"candidate_id"`
	Type            enums.TransactionType   `gorm:"column:type;not null" json:"type"`
	Amount          int64                   `gorm:"column:amount;not null" json:"amount"`
	Status          enums.TransactionStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	DebateID        *uuid.UUID              `gorm:"column:debate_id;type:uuid;index" json:"debate_id,omitempty"`
	Method          *enums.WithdrawalMethod `gorm:"column:method" json:"method,omitempty"`
	AccountNumber   *string                 `gorm:"column:account_number" json:"account_number,omitempty"`
	BeneficiaryName *string                 `gorm:"column:beneficiary_name" json:"beneficiary_name,omitempty"`
	ValidatedBy     *uuid.UUID              `gorm:"column:validated_by;type:uuid" json:"validated_by,omitempty"`
	ValidatedAt     *time.Time              `gorm:"column:validated_at" json:"validated_at,omitempty"`
	RejectionReason *string                 `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
