package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/pkg/db/models"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/pagination"
)

// Service defines notification list/read operations for a candidate.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, candidateID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, candidateID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination for a candidate's notifications.
type ListParams struct {
	CandidateID uuid.UUID
	Page        int
	Limit       int
	UnreadOnly  bool
}

// ListResult wraps a page of notifications with the unread total.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Unread int64                 `json:"unread"`
}

// NewService wires notification dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.CandidateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "candidate id required")
	}

	paging := pagination.Params{Page: params.Page, Limit: params.Limit}
	rows, err := s.repo.ListByCandidate(ctx, params.CandidateID, params.UnreadOnly, paging)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	unread, err := s.repo.CountUnread(ctx, params.CandidateID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}

	if rows == nil {
		rows = []models.Notification{}
	}
	return &ListResult{Items: rows, Unread: unread}, nil
}

func (s *service) MarkRead(ctx context.Context, candidateID, notificationID uuid.UUID) error {
	if candidateID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "candidate id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	mark, err := s.repo.MarkRead(ctx, candidateID, notificationID, time.Now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !mark.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, candidateID uuid.UUID) (int64, error) {
	if candidateID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "candidate id required")
	}
	updated, err := s.repo.MarkAllRead(ctx, candidateID, time.Now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all notifications read")
	}
	return updated, nil
}
