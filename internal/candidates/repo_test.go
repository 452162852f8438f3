package candidates

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/pagination"
)

func TestCreditAndDebit(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)
	candidate := mustCreateTestCandidate(t, db, 1000)

	if err := repo.Credit(ctx, candidate.ID, 500); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := repo.Debit(ctx, candidate.ID, 700); err != nil {
		t.Fatalf("debit: %v", err)
	}

	reloaded, err := repo.FindByID(ctx, candidate.ID)
	if err != nil {
		t.Fatalf("reload candidate: %v", err)
	}
	if reloaded.Balance != 800 {
		t.Fatalf("balance = %d, want 800", reloaded.Balance)
	}
}

func TestDebitInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)
	candidate := mustCreateTestCandidate(t, db, 300)

	err := repo.Debit(ctx, candidate.ID, 500)
	if err == nil {
		t.Fatal("expected debit to fail")
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientBalance) {
		t.Fatalf("error = %v, want %s", err, pkgerrors.CodeInsufficientBalance)
	}

	reloaded, err := repo.FindByID(ctx, candidate.ID)
	if err != nil {
		t.Fatalf("reload candidate: %v", err)
	}
	if reloaded.Balance != 300 {
		t.Fatalf("balance changed on failed debit: %d", reloaded.Balance)
	}
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)
	candidate := mustCreateTestCandidate(t, db, 300)

	for _, amount := range []int64{0, -50} {
		if err := repo.Debit(ctx, candidate.ID, amount); !pkgerrors.IsCode(err, pkgerrors.CodeInvalidAmount) {
			t.Fatalf("debit %d: error = %v, want %s", amount, err, pkgerrors.CodeInvalidAmount)
		}
	}
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)
	candidate := mustCreateTestCandidate(t, db, 5000)

	const workers = 12
	const amount = 1000

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.Debit(ctx, candidate.ID, amount)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientBalance) {
			t.Fatalf("unexpected debit error: %v", err)
		}
	}
	if succeeded != 5 {
		t.Fatalf("succeeded debits = %d, want 5", succeeded)
	}

	reloaded, err := repo.FindByID(ctx, candidate.ID)
	if err != nil {
		t.Fatalf("reload candidate: %v", err)
	}
	if reloaded.Balance != 0 {
		t.Fatalf("balance = %d, want 0", reloaded.Balance)
	}
}

func TestMarkEligibleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)

	candidate := mustCreateTestCandidate(t, db, 0)
	if err := db.Model(&models.Candidate{}).Where("id = ?", candidate.ID).
		Updates(map[string]any{"status": enums.CandidateStatusPendingPayment, "fee_paid": false}).Error; err != nil {
		t.Fatalf("reset candidate: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := repo.MarkEligible(ctx, candidate.ID); err != nil {
			t.Fatalf("mark eligible attempt %d: %v", i+1, err)
		}
	}

	reloaded, err := repo.FindByID(ctx, candidate.ID)
	if err != nil {
		t.Fatalf("reload candidate: %v", err)
	}
	if reloaded.Status != enums.CandidateStatusEligible || !reloaded.FeePaid {
		t.Fatalf("candidate not eligible after mark: status=%s fee_paid=%v", reloaded.Status, reloaded.FeePaid)
	}
}

func TestRecordResult(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)
	candidate := mustCreateTestCandidate(t, db, 0)

	if err := repo.RecordResult(ctx, candidate.ID, true); err != nil {
		t.Fatalf("record win: %v", err)
	}
	if err := repo.RecordResult(ctx, candidate.ID, false); err != nil {
		t.Fatalf("record loss: %v", err)
	}

	reloaded, err := repo.FindByID(ctx, candidate.ID)
	if err != nil {
		t.Fatalf("reload candidate: %v", err)
	}
	if reloaded.Wins != 1 || reloaded.Losses != 1 {
		t.Fatalf("counters = %d/%d, want 1/1", reloaded.Wins, reloaded.Losses)
	}
}

func TestRankingOrder(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)

	first := mustCreateTestCandidate(t, db, 100)
	second := mustCreateTestCandidate(t, db, 900)
	third := mustCreateTestCandidate(t, db, 200)

	set := func(id uuid.UUID, score, wins int) {
		if err := db.Model(&models.Candidate{}).Where("id = ?", id).
			Updates(map[string]any{"final_score": score, "wins": wins}).Error; err != nil {
			t.Fatalf("seed ranking row: %v", err)
		}
	}
	set(first.ID, 18, 2)
	set(second.ID, 15, 3)
	set(third.ID, 15, 3)

	rows, err := repo.Ranking(ctx, enums.CategoryCollegeLycee, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].ID != first.ID {
		t.Fatalf("top of ranking = %s, want highest score", rows[0].ID)
	}
	// second and third tie on score and wins; balance breaks the tie
	if rows[1].ID != second.ID {
		t.Fatalf("second place = %s, want higher balance", rows[1].ID)
	}
}
