package registration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/arbrepalabres/backend/internal/candidates"
	"github.com/arbrepalabres/backend/internal/ledger"
	dbpkg "github.com/arbrepalabres/backend/pkg/db"
	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/metrics"
	"github.com/arbrepalabres/backend/pkg/money"
	"github.com/arbrepalabres/backend/pkg/outbox"
	"github.com/arbrepalabres/backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// SubmitInput carries the application fields a new candidate provides.
type SubmitInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	BirthDate time.Time
	FeeDocRef *string
}

// SubmitResult pairs the created account with its pending fee entry.
type SubmitResult struct {
	Candidate   *models.Candidate
	Transaction *models.Transaction
}

// Service handles candidate applications.
type Service interface {
	SubmitRegistration(ctx context.Context, input SubmitInput) (*SubmitResult, error)
}

type service struct {
	candidates candidates.Repository
	ledger     ledger.Repository
	tx         txRunner
	outbox     outboxPublisher
	metrics    *metrics.LedgerMetrics
	now        func() time.Time
}

// NewService builds a registration service with the required dependencies.
func NewService(candidateRepo candidates.Repository, ledgerRepo ledger.Repository, tx txRunner, publisher outboxPublisher, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
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
		metrics:    ledgerMetrics,
		now:        time.Now,
	}, nil
}

// SubmitRegistration creates the candidate in pending_payment, opens the
// pending registration fee entry, and queues the registration event. All
// three share one transaction.
func (s *service) SubmitRegistration(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	if input.BirthDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "birth date is required")
	}

	placement, err := money.PlacementForBirthDate(input.BirthDate, s.now())
	if err != nil {
		return nil, err
	}

	reference, err := ledger.GenerateReference(enums.TransactionTypeRegistrationFee)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reference")
	}

	candidate := &models.Candidate{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:     strings.TrimSpace(input.Phone),
		BirthDate: input.BirthDate,
		Age:       placement.Age,
		Category:  placement.Category,
		Status:    enums.CandidateStatusPendingPayment,
		FeeDocRef: input.FeeDocRef,
	}
	entry := &models.Transaction{
		Reference: reference,
		Type:      enums.TransactionTypeRegistrationFee,
		Amount:    placement.Fee,
		Status:    enums.TransactionStatusPending,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		candidateRepo := s.candidates.WithTx(tx)
		ledgerRepo := s.ledger.WithTx(tx)

		if err := candidateRepo.Create(ctx, candidate); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "a candidate with this email or phone already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create candidate")
		}

		entry.CandidateID = candidate.ID
		if err := ledgerRepo.Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create fee entry")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventCandidateRegistered,
			AggregateType: enums.AggregateCandidate,
			AggregateID:   candidate.ID,
			Version:       1,
			Data: payloads.CandidateRegisteredEvent{
				CandidateID:   candidate.ID,
				Category:      candidate.Category,
				Fee:           entry.Amount,
				TransactionID: entry.ID,
				Reference:     entry.Reference,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncEntryCreated(entry.Type.String())
	return &SubmitResult{Candidate: candidate, Transaction: entry}, nil
}
