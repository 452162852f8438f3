package candidates

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to extract sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := conn.AutoMigrate(&models.Candidate{}, &models.Transaction{}, &models.Debate{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func mustCreateTestCandidate(t *testing.T, db *gorm.DB, balance int64) *models.Candidate {
	t.Helper()
	candidate := &models.Candidate{
		ID:        uuid.New(),
		FirstName: "Awa",
		LastName:  "Diallo",
		Email:     fmt.Sprintf("awa_%s@example.com", uuid.NewString()),
		Phone:     fmt.Sprintf("+22177%s", uuid.NewString()[:8]),
		BirthDate: time.Date(2010, time.April, 2, 0, 0, 0, 0, time.UTC),
		Age:       16,
		Category:  enums.CategoryCollegeLycee,
		Status:    enums.CandidateStatusEligible,
		FeePaid:   true,
		Balance:   balance,
	}
	if err := db.Create(candidate).Error; err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	return candidate
}
