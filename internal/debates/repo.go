package debates

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
	"github.com/arbrepalabres/backend/pkg/pagination"
)

// Repository manages persistence for debates. Status moves only through the
// guarded transition helper so a debate can never be started or closed twice.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, debate *models.Debate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Debate, error)
	List(ctx context.Context, status *enums.DebateStatus, params pagination.Params) ([]models.Debate, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.DebateStatus, updates map[string]any) (bool, error)
	ReplaceScores(ctx context.Context, id uuid.UUID, scores json.RawMessage) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a debate repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, debate *models.Debate) error {
	if debate.ID == uuid.Nil {
		debate.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(debate).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Debate, error) {
	var debate models.Debate
	if err := r.db.WithContext(ctx).First(&debate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &debate, nil
}

func (r *repository) List(ctx context.Context, status *enums.DebateStatus, params pagination.Params) ([]models.Debate, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Debate{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var rows []models.Debate
	err := query.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TransitionStatus flips the status in a single statement guarded on the
// expected current value. A false return means the debate was not in the
// expected state.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.DebateStatus, updates map[string]any) (bool, error) {
	merged := map[string]any{
		"status":     to,
		"updated_at": time.Now(),
	}
	for column, value := range updates {
		merged[column] = value
	}

	res := r.db.WithContext(ctx).
		Model(&models.Debate{}).
		Where("id = ? AND status = ?", id, from).
		Updates(merged)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReplaceScores overwrites the score sheet of a running debate. The guard on
// in_progress keeps score edits out of settled debates.
func (r *repository) ReplaceScores(ctx context.Context, id uuid.UUID, scores json.RawMessage) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Debate{}).
		Where("id = ? AND status = ?", id, enums.DebateStatusInProgress).
		Updates(map[string]any{
			"scores":     string(scores),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
