package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
	"github.com/arbrepalabres/backend/pkg/pagination"
)

// Repository manages persistence for ledger entries. Entries are append-biased:
// after creation only the resolution fields change, and only through the
// guarded transition helpers below.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	FindByReference(ctx context.Context, reference string) (*models.Transaction, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID, params pagination.Params) ([]models.Transaction, error)
	TransitionFromPending(ctx context.Context, id uuid.UUID, target enums.TransactionStatus, updates map[string]any) (bool, error)
	LinkDebate(ctx context.Context, entryIDs []uuid.UUID, debateID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.Transaction) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var entry models.Transaction
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) FindByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var entry models.Transaction
	if err := r.db.WithContext(ctx).First(&entry, "reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ListByCandidate(ctx context.Context, candidateID uuid.UUID, params pagination.Params) ([]models.Transaction, error) {
	normalized := params.Normalize()
	var rows []models.Transaction
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
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

// TransitionFromPending flips the status only when the row is still pending.
// The guard lives in the WHERE clause, so two concurrent resolutions can never
// both win. Returns false when the row was already resolved (or missing).
func (r *repository) TransitionFromPending(ctx context.Context, id uuid.UUID, target enums.TransactionStatus, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = target
	updates["updated_at"] = time.Now()

	res := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, enums.TransactionStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) LinkDebate(ctx context.Context, entryIDs []uuid.UUID, debateID uuid.UUID) error {
	if len(entryIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id IN ?", entryIDs).
		Update("debate_id", debateID).Error
}
