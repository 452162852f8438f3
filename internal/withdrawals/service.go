package withdrawals

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arbrepalabres/backend/internal/candidates"
	"github.com/arbrepalabres/backend/internal/ledger"
	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/logger"
	"github.com/arbrepalabres/backend/pkg/metrics"
	"github.com/arbrepalabres/backend/pkg/outbox"
	"github.com/arbrepalabres/backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// RequestInput carries a candidate's payout request.
type RequestInput struct {
	CandidateID     uuid.UUID
	Amount          int64
	Method          enums.WithdrawalMethod
	AccountNumber   string
	BeneficiaryName string
}

// RequestResult pairs the pending entry with the balance after the debit.
type RequestResult struct {
	Transaction *models.Transaction
	NewBalance  int64
}

// Service handles the withdrawal workflow.
type Service interface {
	RequestWithdrawal(ctx context.Context, input RequestInput) (*RequestResult, error)
}

type service struct {
	candidates candidates.Repository
	ledger     ledger.Repository
	tx         txRunner
	outbox     outboxPublisher
	logg       *logger.Logger
	metrics    *metrics.LedgerMetrics
}

// NewService builds a withdrawal service with the required dependencies.
func NewService(candidateRepo candidates.Repository, ledgerRepo ledger.Repository, tx txRunner, publisher outboxPublisher, logg *logger.Logger, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if candidateRepo == nil {
		return nil, fmt.Errorf("candidates repository required")
	}
	if ledgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		candidates: candidateRepo,
		ledger:     ledgerRepo,
		tx:         tx,
		outbox:     publisher,
		logg:       logg,
		metrics:    ledgerMetrics,
	}, nil
}

// RequestWithdrawal reserves the funds immediately: the pending entry is
// created first so it carries a quotable reference, then the guarded debit
// runs in the same transaction. Rejection later refunds through the ledger
// state machine.
func (s *service) RequestWithdrawal(ctx context.Context, input RequestInput) (*RequestResult, error) {
	if input.CandidateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "candidate id required")
	}
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "withdrawal amount must be positive")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid withdrawal method %q", input.Method)
	}
	if strings.TrimSpace(input.AccountNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account number required")
	}
	if strings.TrimSpace(input.BeneficiaryName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "beneficiary name required")
	}

	reference, err := ledger.GenerateReference(enums.TransactionTypeWithdrawal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reference")
	}

	method := input.Method
	account := strings.TrimSpace(input.AccountNumber)
	beneficiary := strings.TrimSpace(input.BeneficiaryName)
	entry := &models.Transaction{
		Reference:       reference,
		CandidateID:     input.CandidateID,
		Type:            enums.TransactionTypeWithdrawal,
		Amount:          input.Amount,
		Status:          enums.TransactionStatusPending,
		Method:          &method,
		AccountNumber:   &account,
		BeneficiaryName: &beneficiary,
	}

	var newBalance int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		candidateRepo := s.candidates.WithTx(tx)
		ledgerRepo := s.ledger.WithTx(tx)

		candidate, err := candidateRepo.FindByID(ctx, input.CandidateID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "candidate not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load candidate")
		}
		if candidate.Balance < input.Amount {
			return pkgerrors.Newf(pkgerrors.CodeInsufficientBalance,
				"balance is %d, cannot withdraw %d", candidate.Balance, input.Amount)
		}

		// entry first so the reference exists, then the guarded debit
		if err := ledgerRepo.Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create withdrawal entry")
		}

		if err := candidateRepo.Debit(ctx, input.CandidateID, input.Amount); err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeInsufficientBalance) {
				// a concurrent debit won the race after our balance read;
				// rolling back removes the entry and the caller gets a clean failure
				s.metrics.IncDebitRejection()
				return pkgerrors.Newf(pkgerrors.CodeInsufficientBalance,
					"balance is %d, cannot withdraw %d", candidate.Balance, input.Amount)
			}
			s.metrics.IncReconciliationIncident()
			if s.logg != nil {
				logCtx := s.logg.WithCandidateID(ctx, input.CandidateID.String())
				logCtx = s.logg.WithReference(logCtx, reference)
				s.logg.Error(logCtx, "withdrawal debit failed after entry creation", err)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debit balance")
		}
		newBalance = candidate.Balance - input.Amount

		event := outbox.DomainEvent{
			EventType:     enums.EventWithdrawalRequested,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   entry.ID,
			Version:       1,
			Data: payloads.WithdrawalRequestedEvent{
				CandidateID:   input.CandidateID,
				TransactionID: entry.ID,
				Reference:     entry.Reference,
				Amount:        entry.Amount,
				Method:        method,
				NewBalance:    newBalance,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncEntryCreated(entry.Type.String())
	return &RequestResult{Transaction: entry, NewBalance: newBalance}, nil
}
