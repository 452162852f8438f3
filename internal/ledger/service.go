package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arbrepalabres/backend/internal/candidates"
	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/metrics"
	"github.com/arbrepalabres/backend/pkg/outbox"
	"github.com/arbrepalabres/backend/pkg/outbox/payloads"
	"github.com/arbrepalabres/backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Decision is the admin's verdict on a pending ledger entry.
type Decision string

const (
	DecisionValidate Decision = "validate"
	DecisionReject   Decision = "reject"
)

// ResolveInput carries everything needed to move an entry out of pending.
type ResolveInput struct {
	TransactionID uuid.UUID
	Decision      Decision
	Reason        *string
	ActorID       uuid.UUID
}

// Service runs the ledger entry state machine.
type Service interface {
	Resolve(ctx context.Context, input ResolveInput) (*models.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID, params pagination.Params) ([]models.Transaction, error)
}

type service struct {
	repo       Repository
	candidates candidates.Repository
	tx         txRunner
	outbox     outboxPublisher
	metrics    *metrics.LedgerMetrics
}

// NewService builds a ledger service with the required dependencies.
func NewService(repo Repository, candidateRepo candidates.Repository, tx txRunner, publisher outboxPublisher, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if candidateRepo == nil {
		return nil, fmt.Errorf("candidates repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:       repo,
		candidates: candidateRepo,
		tx:         tx,
		outbox:     publisher,
		metrics:    ledgerMetrics,
	}, nil
}

func (s *service) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return entry, nil
}

func (s *service) ListByCandidate(ctx context.Context, candidateID uuid.UUID, params pagination.Params) ([]models.Transaction, error) {
	if candidateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "candidate id required")
	}
	rows, err := s.repo.ListByCandidate(ctx, candidateID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	return rows, nil
}

// Resolve moves a pending entry to its terminal status. Validation of a
// registration fee also flips the candidate to eligible; rejection of a
// withdrawal refunds the amount debited at request time. Both side effects
// share the entry's transaction so a crash can never leave them half applied.
func (s *service) Resolve(ctx context.Context, input ResolveInput) (*models.Transaction, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "resolving admin id required")
	}
	if input.Decision != DecisionValidate && input.Decision != DecisionReject {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "decision must be %s or %s", DecisionValidate, DecisionReject)
	}
	if input.Decision == DecisionReject && (input.Reason == nil || *input.Reason == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}

	var resolved *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		candidateRepo := s.candidates.WithTx(tx)

		entry, err := repo.FindByID(ctx, input.TransactionID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
		}
		if entry.Status.IsTerminal() {
			return pkgerrors.Newf(pkgerrors.CodeInvalidTransactionState, "transaction %s is already %s", entry.Reference, entry.Status)
		}

		now := time.Now()
		target := targetStatus(entry.Type, input.Decision)
		updates := map[string]any{
			"validated_by": input.ActorID,
			"validated_at": now,
		}
		if input.Decision == DecisionReject {
			updates["rejection_reason"] = *input.Reason
		}

		flipped, err := repo.TransitionFromPending(ctx, entry.ID, target, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition transaction")
		}
		if !flipped {
			return pkgerrors.Newf(pkgerrors.CodeInvalidTransactionState, "transaction %s was resolved concurrently", entry.Reference)
		}

		switch {
		case input.Decision == DecisionValidate && entry.Type == enums.TransactionTypeRegistrationFee:
			if err := candidateRepo.MarkEligible(ctx, entry.CandidateID); err != nil {
				return err
			}
			event := outbox.DomainEvent{
				EventType:     enums.EventPaymentValidated,
				AggregateType: enums.AggregateCandidate,
				AggregateID:   entry.CandidateID,
				Version:       1,
				Actor:         &outbox.ActorRef{ActorID: input.ActorID, Role: "admin"},
				Data: payloads.PaymentValidatedEvent{
					CandidateID:   entry.CandidateID,
					TransactionID: entry.ID,
					Reference:     entry.Reference,
					Amount:        entry.Amount,
					ValidatedBy:   input.ActorID,
					ValidatedAt:   now,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}

		case input.Decision == DecisionReject && entry.Type == enums.TransactionTypeWithdrawal:
			// the amount was reserved at request time; give it back
			if err := candidateRepo.Credit(ctx, entry.CandidateID, entry.Amount); err != nil {
				return err
			}
		}

		entry.Status = target
		entry.ValidatedBy = &input.ActorID
		entry.ValidatedAt = &now
		if input.Decision == DecisionReject {
			entry.RejectionReason = input.Reason
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventTransactionResolved,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   entry.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{ActorID: input.ActorID, Role: "admin"},
			Data: payloads.TransactionResolvedEvent{
				CandidateID:     entry.CandidateID,
				TransactionID:   entry.ID,
				Reference:       entry.Reference,
				Type:            entry.Type,
				Status:          entry.Status,
				Amount:          entry.Amount,
				RejectionReason: reasonOrEmpty(input.Reason),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		resolved = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncEntryResolved(resolved.Type.String(), resolved.Status.String())
	if resolved.Status == enums.TransactionStatusCompleted {
		s.metrics.AddAmountMoved(resolved.Type.String(), resolved.Amount)
	}
	return resolved, nil
}

func targetStatus(txType enums.TransactionType, decision Decision) enums.TransactionStatus {
	if decision == DecisionReject {
		return enums.TransactionStatusRejected
	}
	if txType == enums.TransactionTypeRegistrationFee {
		return enums.TransactionStatusValidated
	}
	return enums.TransactionStatusCompleted
}

func reasonOrEmpty(reason *string) string {
	if reason == nil {
		return ""
	}
	return *reason
}
