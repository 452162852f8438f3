package candidates

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/pagination"
)

// Repository manages persistence for candidate accounts. Balance mutations go
// through Credit and Debit only; both run as single guarded UPDATE statements
// so concurrent movements against one account stay linearizable.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, candidate *models.Candidate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Candidate, error)
	Credit(ctx context.Context, id uuid.UUID, amount int64) error
	Debit(ctx context.Context, id uuid.UUID, amount int64) error
	MarkEligible(ctx context.Context, id uuid.UUID) error
	RecordResult(ctx context.Context, id uuid.UUID, won bool) error
	SetFinalScore(ctx context.Context, id uuid.UUID, score int) error
	Ranking(ctx context.Context, category enums.Category, params pagination.Params) ([]models.Candidate, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a candidate repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, candidate *models.Candidate) error {
	if candidate.ID == uuid.Nil {
		candidate.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(candidate).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.WithContext(ctx).First(&candidate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Candidate, error) {
	var rows []models.Candidate
	if len(ids) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Credit increments the balance in a single statement.
func (r *repository) Credit(ctx context.Context, id uuid.UUID, amount int64) error {
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidAmount, "credit amount must be positive")
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE candidates
		SET balance = balance + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, amount, id)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "credit balance")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "candidate not found")
	}
	return nil
}

// Debit decrements the balance only when enough funds remain. The balance
// guard lives in the WHERE clause, never in application code.
func (r *repository) Debit(ctx context.Context, id uuid.UUID, amount int64) error {
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidAmount, "debit amount must be positive")
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE candidates
		SET balance = balance - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND balance >= ?
	`, amount, id, amount)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "debit balance")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "balance below requested amount")
	}
	return nil
}

// MarkEligible flips the paid flag and status. Safe to repeat.
func (r *repository) MarkEligible(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"fee_paid": true,
			"status":   enums.CandidateStatusEligible,
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "mark eligible")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "candidate not found")
	}
	return nil
}

func (r *repository) RecordResult(ctx context.Context, id uuid.UUID, won bool) error {
	column := "losses"
	if won {
		column = "wins"
	}
	res := r.db.WithContext(ctx).Model(&models.Candidate{}).
		Where("id = ?", id).
		Update(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "record result")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "candidate not found")
	}
	return nil
}

func (r *repository) SetFinalScore(ctx context.Context, id uuid.UUID, score int) error {
	res := r.db.WithContext(ctx).Model(&models.Candidate{}).
		Where("id = ?", id).
		Update("final_score", score)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "set final score")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "candidate not found")
	}
	return nil
}

// Ranking lists candidates of a category ordered by score, wins, then balance.
func (r *repository) Ranking(ctx context.Context, category enums.Category, params pagination.Params) ([]models.Candidate, error) {
	normalized := params.Normalize()
	var rows []models.Candidate
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("final_score DESC").
		Order("wins DESC").
		Order("balance DESC").
		Offset(params.Offset()).
		Limit(normalized.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
