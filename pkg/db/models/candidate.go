package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/pkg/enums"
)

// Candidate is a contestant account. Balance is stored in whole currency
// units and is only ever mutated through the candidates repository's atomic
// credit/debit statements.
type Candidate struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FirstName   string                `gorm:"column:first_name;not null" json:"first_name"`
	LastName    string                `gorm:"column:last_name;not null" json:"last_name"`
	Email       string                `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Phone       string                `gorm:"column:phone;not null;uniqueIndex" json:"phone"`
	BirthDate   time.Time             `gorm:"column:birth_date;not null" json:"birth_date"`
	Age         int                   `gorm:"column:age;not null" json:"age"`
	Category    enums.Category        `gorm:"column:category;not null" json:"category"`
	Status      enums.CandidateStatus `gorm:"column:status;not null;default:'pending_payment'" json:"status"`
	FeePaid     bool                  `gorm:"column:fee_paid;not null;default:false" json:"fee_paid"`
	Balance     int64                 `gorm:"column:balance;not null;default:0" json:"balance"`
	Wins        int                   `gorm:"column:wins;not null;default:0" json:"wins"`
	Losses      int                   `gorm:"column:losses;not null;default:0" json:"losses"`
	FinalScore  int                   `gorm:"column:final_score;not null;default:0" json:"final_score"`
	FeeDocRef   *string               `gorm:"column:fee_doc_ref" json:"fee_doc_ref,omitempty"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
