package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/internal/candidates"
	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/outbox"
)

func TestResolveValidateRegistrationFee(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	candidateRepo := candidates.NewRepository(db)
	svc, err := NewService(NewRepository(db), candidateRepo, gormTxRunner{db: db}, outbox.NewService(outbox.NewRepository(db), nil), nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	candidate := mustCreateTestCandidate(t, db, enums.CandidateStatusPendingPayment, 0)
	entry := mustCreateTestEntry(t, db, candidate.ID, enums.TransactionTypeRegistrationFee, 1000)
	admin := uuid.New()

	resolved, err := svc.Resolve(ctx, ResolveInput{
		TransactionID: entry.ID,
		Decision:      DecisionValidate,
		ActorID:       admin,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != enums.TransactionStatusValidated {
		t.Fatalf("status = %s, want validated", resolved.Status)
	}
	if resolved.ValidatedBy == nil || *resolved.ValidatedBy != admin {
		t.Fatalf("validated_by not recorded")
	}

	var reloaded models.Candidate
	if err := db.First(&reloaded, "id = ?", candidate.ID).Error; err != nil {
		t.Fatalf("reload candidate: %v", err)
	}
	if reloaded.Status != enums.CandidateStatusEligible || !reloaded.FeePaid {
		t.Fatalf("candidate not flipped to eligible: status=%s fee_paid=%v", reloaded.Status, reloaded.FeePaid)
	}

	var events []models.OutboxEvent
	if err := db.Find(&events).Error; err != nil {
		t.Fatalf("load outbox events: %v", err)
	}
	types := map[enums.OutboxEventType]bool{}
	for _, event := range events {
		types[event.EventType] = true
	}
	if !types[enums.EventPaymentValidated] || !types[enums.EventTransactionResolved] {
		t.Fatalf("missing outbox events, got %v", types)
	}
}

func TestResolveValidateIsNotRepeatable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	svc, err := NewService(NewRepository(db), candidates.NewRepository(db), gormTxRunner{db: db}, outbox.NewService(outbox.NewRepository(db), nil), nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	candidate := mustCreateTestCandidate(t, db, enums.CandidateStatusPendingPayment, 0)
	entry := mustCreateTestEntry(t, db, candidate.ID, enums.TransactionTypeRegistrationFee, 1000)
	input := ResolveInput{TransactionID: entry.ID, Decision: DecisionValidate, ActorID: uuid.New()}

	if _, err := svc.Resolve(ctx, input); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	_, err = svc.Resolve(ctx, input)
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransactionState) {
		t.Fatalf("second resolve error = %v, want %s", err, pkgerrors.CodeInvalidTransactionState)
	}

	var reloaded models.Candidate
	if err := db.First(&reloaded, "id = ?", candidate.ID).Error; err != nil {
		t.Fatalf("reload candidate: %v", err)
	}
	if reloaded.Status != enums.CandidateStatusEligible {
		t.Fatalf("candidate status = %s, want eligible", reloaded.Status)
	}
}

func TestResolveRejectWithdrawalRefundsBalance(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	candidateRepo := candidates.NewRepository(db)
	svc, err := NewService(NewRepository(db), candidateRepo, gormTxRunner{db: db}, outbox.NewService(outbox.NewRepository(db), nil), nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	// balance was already debited when the withdrawal was requested
	candidate := mustCreateTestCandidate(t, db, enums.CandidateStatusEligible, 2000)
	if err := candidateRepo.Debit(ctx, candidate.ID, 1500); err != nil {
		t.Fatalf("debit at request time: %v", err)
	}
	entry := mustCreateTestEntry(t, db, candidate.ID, enums.TransactionTypeWithdrawal, 1500)

	reason := "account number could not be verified"
	resolved, err := svc.Resolve(ctx, ResolveInput{
		TransactionID: entry.ID,
		Decision:      DecisionReject,
		Reason:        &reason,
		ActorID:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != enums.TransactionStatusRejected {
		t.Fatalf("status = %s, want rejected", resolved.Status)
	}
	if resolved.RejectionReason == nil || *resolved.RejectionReason != reason {
		t.Fatalf("rejection reason not recorded")
	}

	var reloaded models.Candidate
	if err := db.First(&reloaded, "id = ?", candidate.ID).Error; err != nil {
		t.Fatalf("reload candidate: %v", err)
	}
	if reloaded.Balance != 2000 {
		t.Fatalf("balance = %d, want 2000 after refund", reloaded.Balance)
	}
}

func TestResolveValidateWithdrawalCompletesWithoutBalanceChange(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	svc, err := NewService(NewRepository(db), candidates.NewRepository(db), gormTxRunner{db: db}, outbox.NewService(outbox.NewRepository(db), nil), nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	candidate := mustCreateTestCandidate(t, db, enums.CandidateStatusEligible, 500)
	entry := mustCreateTestEntry(t, db, candidate.ID, enums.TransactionTypeWithdrawal, 1500)

	resolved, err := svc.Resolve(ctx, ResolveInput{
		TransactionID: entry.ID,
		Decision:      DecisionValidate,
		ActorID:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != enums.TransactionStatusCompleted {
		t.Fatalf("status = %s, want completed", resolved.Status)
	}

	var reloaded models.Candidate
	if err := db.First(&reloaded, "id = ?", candidate.ID).Error; err != nil {
		t.Fatalf("reload candidate: %v", err)
	}
	if reloaded.Balance != 500 {
		t.Fatalf("balance = %d, want unchanged 500", reloaded.Balance)
	}
}

func TestResolveInputValidation(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	svc, err := NewService(NewRepository(db), candidates.NewRepository(db), gormTxRunner{db: db}, outbox.NewService(outbox.NewRepository(db), nil), nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	if _, err := svc.Resolve(ctx, ResolveInput{Decision: DecisionValidate, ActorID: uuid.New()}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("missing transaction id: %v", err)
	}
	if _, err := svc.Resolve(ctx, ResolveInput{TransactionID: uuid.New(), Decision: Decision("approve"), ActorID: uuid.New()}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("bad decision: %v", err)
	}
	if _, err := svc.Resolve(ctx, ResolveInput{TransactionID: uuid.New(), Decision: DecisionReject, ActorID: uuid.New()}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("missing reason: %v", err)
	}
	if _, err := svc.Resolve(ctx, ResolveInput{TransactionID: uuid.New(), Decision: DecisionValidate, ActorID: uuid.New()}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("unknown transaction: %v", err)
	}
}
