package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/arbrepalabres/backend/pkg/db/types"
	"github.com/arbrepalabres/backend/pkg/enums"
)

// Debate is a four-person round. The pool invariant (organizer fee + winner
// amount == total pool) is established at creation and never recomputed.
type Debate struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Theme          string              `gorm:"column:theme;not null" json:"theme"`
	Category       enums.Category      `gorm:"column:category;not null" json:"category"`
	ParticipantIDs dbtypes.UUIDArray   `gorm:"column:participant_ids;type:text;not null" json:"participant_ids"`
	TotalPool      int64               `gorm:"column:total_pool;not null" json:"total_pool"`
	OrganizerFee   int64               `gorm:"column:organizer_fee;not null" json:"organizer_fee"`
	WinnerAmount   int64               `gorm:"column:winner_amount;not null" json:"winner_amount"`
	StakePerHead   int64               `gorm:"column:stake_per_head;not null" json:"stake_per_head"`
	FundingSource  enums.FundingSource `gorm:"column:funding_source;not null" json:"funding_source"`
	Status         enums.DebateStatus  `gorm:"column:status;not null;default:'pending'" json:"status"`
	WinnerID       *uuid.UUID          `gorm:"column:winner_id;type:uuid" json:"winner_id,omitempty"`
	OrganizerID    *uuid.UUID          `gorm:"column:organizer_id;type:uuid" json:"organizer_id,omitempty"`
	Scores         json.RawMessage     `gorm:"column:scores;type:text" json:"scores,omitempty"`
	StartedAt      *time.Time          `gorm:"column:started_at" json:"started_at,omitempty"`
	EndedAt        *time.Time          `gorm:"column:ended_at" json:"ended_at,omitempty"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// ParticipantScore is the per-candidate score snapshot serialized into the
// debate's scores column.
type ParticipantScore struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Score       int       `json:"score"`
}
