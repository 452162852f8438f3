package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/pagination"
)

// Repository exposes persistence helpers for candidate notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	ListByCandidate(ctx context.Context, candidateID uuid.UUID, unreadOnly bool, params pagination.Params) ([]models.Notification, error)
	CountUnread(ctx context.Context, candidateID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, candidateID, notificationID uuid.UUID, now time.Time) (markResult, error)
	MarkAllRead(ctx context.Context, candidateID uuid.UUID, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type markResult struct {
	Found   bool
	Updated bool
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repository) ListByCandidate(ctx context.Context, candidateID uuid.UUID, unreadOnly bool, params pagination.Params) ([]models.Notification, error) {
	normalized := params.Normalize()
	query := r.db.WithContext(ctx).Where("candidate_id = ?", candidateID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var rows []models.Notification
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Offset(params.Offset()).
		Limit(normalized.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountUnread(ctx context.Context, candidateID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("candidate_id = ? AND read_at IS NULL", candidateID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead is idempotent: a second call finds the row but updates nothing.
func (r *repository) MarkRead(ctx context.Context, candidateID, notificationID uuid.UUID, now time.Time) (markResult, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND candidate_id = ? AND read_at IS NULL", notificationID, candidateID).
		UpdateColumn("read_at", now)
	if res.Error != nil {
		return markResult{}, res.Error
	}
	if res.RowsAffected > 0 {
		return markResult{Found: true, Updated: true}, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND candidate_id = ?", notificationID, candidateID).
		Count(&count).Error
	if err != nil {
		return markResult{}, err
	}
	return markResult{Found: count > 0}, nil
}

func (r *repository) MarkAllRead(ctx context.Context, candidateID uuid.UUID, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("candidate_id = ? AND read_at IS NULL", candidateID).
		UpdateColumn("read_at", now)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
