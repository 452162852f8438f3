package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
	"github.com/arbrepalabres/backend/pkg/pagination"
)

func seedNotification(t *testing.T, repo Repository, candidateID uuid.UUID, createdAt time.Time, read bool) *models.Notification {
	t.Helper()
	notification := &models.Notification{
		CandidateID: candidateID,
		Type:        enums.NotificationPayment,
		Title:       "Registration fee validated",
		Message:     "Your registration fee has been validated.",
		CreatedAt:   createdAt,
	}
	if read {
		readAt := createdAt.Add(time.Minute)
		notification.ReadAt = &readAt
	}
	if err := repo.Create(context.Background(), notification); err != nil {
		t.Fatalf("create notification: %v", err)
	}
	return notification
}

func TestRepositoryListByCandidateOrdersNewestFirst(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	candidateID := uuid.New()
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

	older := seedNotification(t, repo, candidateID, base, false)
	newer := seedNotification(t, repo, candidateID, base.Add(time.Hour), false)
	seedNotification(t, repo, uuid.New(), base.Add(2*time.Hour), false)

	rows, err := repo.ListByCandidate(context.Background(), candidateID, false, pagination.Params{})
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(rows))
	}
	if rows[0].ID != newer.ID || rows[1].ID != older.ID {
		t.Fatalf("rows not ordered newest first")
	}
}

func TestRepositoryListByCandidateUnreadOnly(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	candidateID := uuid.New()
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

	seedNotification(t, repo, candidateID, base, true)
	unread := seedNotification(t, repo, candidateID, base.Add(time.Hour), false)

	rows, err := repo.ListByCandidate(context.Background(), candidateID, true, pagination.Params{})
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 unread notification, got %d", len(rows))
	}
	if rows[0].ID != unread.ID {
		t.Fatalf("unexpected notification returned")
	}

	count, err := repo.CountUnread(context.Background(), candidateID)
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unread, got %d", count)
	}
}

func TestRepositoryMarkReadIsIdempotent(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	candidateID := uuid.New()
	notification := seedNotification(t, repo, candidateID, time.Now().UTC(), false)

	mark, err := repo.MarkRead(context.Background(), candidateID, notification.ID, time.Now())
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !mark.Found || !mark.Updated {
		t.Fatalf("expected first mark to update, got %+v", mark)
	}

	mark, err = repo.MarkRead(context.Background(), candidateID, notification.ID, time.Now())
	if err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	if !mark.Found || mark.Updated {
		t.Fatalf("expected second mark to find without updating, got %+v", mark)
	}
}

func TestRepositoryMarkReadScopedToCandidate(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	notification := seedNotification(t, repo, uuid.New(), time.Now().UTC(), false)

	mark, err := repo.MarkRead(context.Background(), uuid.New(), notification.ID, time.Now())
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if mark.Found {
		t.Fatalf("expected notification of another candidate to stay hidden")
	}
}

func TestRepositoryMarkAllRead(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	candidateID := uuid.New()
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

	seedNotification(t, repo, candidateID, base, false)
	seedNotification(t, repo, candidateID, base.Add(time.Hour), false)
	seedNotification(t, repo, candidateID, base.Add(2*time.Hour), true)

	updated, err := repo.MarkAllRead(context.Background(), candidateID, time.Now())
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 rows updated, got %d", updated)
	}

	count, err := repo.CountUnread(context.Background(), candidateID)
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no unread rows, got %d", count)
	}
}
