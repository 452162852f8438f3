package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to extract sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := conn.AutoMigrate(&models.Candidate{}, &models.Transaction{}, &models.Debate{}, &models.OutboxEvent{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func mustCreateTestCandidate(t *testing.T, db *gorm.DB, status enums.CandidateStatus, balance int64) *models.Candidate {
	t.Helper()
	candidate := &models.Candidate{
		ID:        uuid.New(),
		FirstName: "Moussa",
		LastName:  "Ndiaye",
		Email:     fmt.Sprintf("moussa_%s@example.com", uuid.NewString()),
		Phone:     fmt.Sprintf("+22176%s", uuid.NewString()[:8]),
		BirthDate: time.Date(2009, time.June, 14, 0, 0, 0, 0, time.UTC),
		Age:       17,
		Category:  enums.CategoryCollegeLycee,
		Status:    status,
		FeePaid:   status == enums.CandidateStatusEligible,
		Balance:   balance,
	}
	if err := db.Create(candidate).Error; err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	return candidate
}

func mustCreateTestEntry(t *testing.T, db *gorm.DB, candidateID uuid.UUID, txType enums.TransactionType, amount int64) *models.Transaction {
	t.Helper()
	reference, err := GenerateReference(txType)
	if err != nil {
		t.Fatalf("generate reference: %v", err)
	}
	entry := &models.Transaction{
		ID:          uuid.New(),
		Reference:   reference,
		CandidateID: candidateID,
		Type:        txType,
		Amount:      amount,
		Status:      enums.TransactionStatusPending,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return entry
}
