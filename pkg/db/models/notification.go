package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/pkg/enums"
)

// Notification is a per-candidate message derived from ledger and debate
// events. Rows are written by the notifications worker, never by request
// handlers, so a failed write never blocks a ledger operation.
type Notification struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CandidateID uuid.UUID              `gorm:"column:candidate_id;type:uuid;not null;index" json:"candidate_id"`
	Type        enums.NotificationType `gorm:"column:type;not null" json:"type"`
	Title       string                 `gorm:"column:title;not null" json:"title"`
	Message     string                 `gorm:"column:message;not null" json:"message"`
	Reference   *string                `gorm:"column:reference" json:"reference,omitempty"`
	ReadAt      *time.Time             `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
