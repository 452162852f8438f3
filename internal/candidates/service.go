package candidates

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/pagination"
)

// Service exposes read operations over candidate accounts.
type Service interface {
	GetCandidate(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
	ListRanking(ctx context.Context, category enums.Category, params pagination.Params) ([]models.Candidate, error)
}

type service struct {
	repo Repository
}

// NewService wires a candidate service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("candidates repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetCandidate(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "candidate id required")
	}
	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "candidate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load candidate")
	}
	return candidate, nil
}

func (s *service) ListRanking(ctx context.Context, category enums.Category, params pagination.Params) ([]models.Candidate, error) {
	if !category.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid category %q", category)
	}
	rows, err := s.repo.Ranking(ctx, category, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ranking")
	}
	return rows, nil
}
