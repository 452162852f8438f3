package debates

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arbrepalabres/backend/internal/candidates"
	"github.com/arbrepalabres/backend/internal/ledger"
	"github.com/arbrepalabres/backend/pkg/db/models"
	dbtypes "github.com/arbrepalabres/backend/pkg/db/types"
	"github.com/arbrepalabres/backend/pkg/enums"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/logger"
	"github.com/arbrepalabres/backend/pkg/metrics"
	"github.com/arbrepalabres/backend/pkg/money"
	"github.com/arbrepalabres/backend/pkg/outbox"
	"github.com/arbrepalabres/backend/pkg/outbox/payloads"
	"github.com/arbrepalabres/backend/pkg/pagination"
)

// Score bounds for a debate round.
const (
	MinScore = 0
	MaxScore = 20
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateStandardInput describes a debate funded by already-collected
// registration fees.
type CreateStandardInput struct {
	Theme          string
	Category       enums.Category
	ParticipantIDs []uuid.UUID
	OrganizerID    *uuid.UUID
	ActorID        uuid.UUID
}

// CreateChallengeInput describes a debate funded by per-participant stakes
// debited at creation time.
type CreateChallengeInput struct {
	Theme          string
	Category       enums.Category
	ParticipantIDs []uuid.UUID
	StakePerHead   int64
	OrganizerID    *uuid.UUID
	ActorID        uuid.UUID
}

// CloseInput settles a running debate on a winner.
type CloseInput struct {
	DebateID uuid.UUID
	WinnerID uuid.UUID
	ActorID  uuid.UUID
}

// UpdateScoresInput replaces the score sheet of a running debate.
type UpdateScoresInput struct {
	DebateID uuid.UUID
	Scores   []models.ParticipantScore
	ActorID  uuid.UUID
}

// Service runs the debate lifecycle and its settlement.
type Service interface {
	CreateStandardDebate(ctx context.Context, input CreateStandardInput) (*models.Debate, error)
	CreateChallengeDebate(ctx context.Context, input CreateChallengeInput) (*models.Debate, error)
	StartDebate(ctx context.Context, debateID, actorID uuid.UUID) (*models.Debate, error)
	CloseDebate(ctx context.Context, input CloseInput) (*models.Debate, error)
	UpdateScores(ctx context.Context, input UpdateScoresInput) (*models.Debate, error)
	GetDebate(ctx context.Context, id uuid.UUID) (*models.Debate, error)
	ListDebates(ctx context.Context, status *enums.DebateStatus, params pagination.Params) ([]models.Debate, error)
}

type service struct {
	repo       Repository
	candidates candidates.Repository
	ledger     ledger.Repository
	tx         txRunner
	outbox     outboxPublisher
	logg       *logger.Logger
	metrics    *metrics.LedgerMetrics
}

// NewService builds a debate service with the required dependencies.
func NewService(repo Repository, candidateRepo candidates.Repository, ledgerRepo ledger.Repository, tx txRunner, publisher outboxPublisher, logg *logger.Logger, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("debates repository required")
	}
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
		repo:       repo,
		candidates: candidateRepo,
		ledger:     ledgerRepo,
		tx:         tx,
		outbox:     publisher,
		logg:       logg,
		metrics:    ledgerMetrics,
	}, nil
}

func (s *service) GetDebate(ctx context.Context, id uuid.UUID) (*models.Debate, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debate id required")
	}
	debate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "debate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load debate")
	}
	return debate, nil
}

func (s *service) ListDebates(ctx context.Context, status *enums.DebateStatus, params pagination.Params) ([]models.Debate, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid debate status %q", *status)
	}
	rows, err := s.repo.List(ctx, status, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list debates")
	}
	return rows, nil
}

// CreateStandardDebate opens a debate whose pool is funded by the
// participants' registration fees, one fee per head at the category rate.
func (s *service) CreateStandardDebate(ctx context.Context, input CreateStandardInput) (*models.Debate, error) {
	if err := validateLineup(input.Theme, input.Category, input.ParticipantIDs, input.ActorID); err != nil {
		return nil, err
	}

	fee, err := money.FeeForCategory(input.Category)
	if err != nil {
		return nil, err
	}
	total, split := money.PoolForDebate(fee, money.DebateParticipants)

	debate := &models.Debate{
		ID:             uuid.New(),
		Theme:          strings.TrimSpace(input.Theme),
		Category:       input.Category,
		ParticipantIDs: dbtypes.UUIDArray(input.ParticipantIDs),
		TotalPool:      total,
		OrganizerFee:   split.OrganizerFee,
		WinnerAmount:   split.WinnerAmount,
		StakePerHead:   fee,
		FundingSource:  enums.FundingSourceRegistration,
		Status:         enums.DebateStatusPending,
		OrganizerID:    input.OrganizerID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		candidateRepo := s.candidates.WithTx(tx)
		if err := s.checkParticipants(ctx, candidateRepo, input.ParticipantIDs, input.Category); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Create(ctx, debate); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create debate")
		}
		return s.emitDebateCreated(ctx, tx, debate, input.ActorID)
	})
	if err != nil {
		return nil, err
	}
	return debate, nil
}

// CreateChallengeDebate opens a debate funded by live stakes. Every
// participant's stake is debited and journaled before the debate row exists,
// all in one transaction, so a failed debit leaves nothing behind.
func (s *service) CreateChallengeDebate(ctx context.Context, input CreateChallengeInput) (*models.Debate, error) {
	if err := validateLineup(input.Theme, input.Category, input.ParticipantIDs, input.ActorID); err != nil {
		return nil, err
	}
	if input.StakePerHead <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "stake per head must be positive")
	}

	total, split := money.PoolForDebate(input.StakePerHead, money.DebateParticipants)

	debate := &models.Debate{
		ID:             uuid.New(),
		Theme:          strings.TrimSpace(input.Theme),
		Category:       input.Category,
		ParticipantIDs: dbtypes.UUIDArray(input.ParticipantIDs),
		TotalPool:      total,
		OrganizerFee:   split.OrganizerFee,
		WinnerAmount:   split.WinnerAmount,
		StakePerHead:   input.StakePerHead,
		FundingSource:  enums.FundingSourceStake,
		Status:         enums.DebateStatusPending,
		OrganizerID:    input.OrganizerID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		candidateRepo := s.candidates.WithTx(tx)
		ledgerRepo := s.ledger.WithTx(tx)

		if err := s.checkParticipants(ctx, candidateRepo, input.ParticipantIDs, input.Category); err != nil {
			return err
		}
		if err := s.checkStakeFunding(ctx, candidateRepo, input.ParticipantIDs, input.StakePerHead); err != nil {
			return err
		}

		entryIDs := make([]uuid.UUID, 0, len(input.ParticipantIDs))
		for _, participantID := range input.ParticipantIDs {
			if err := candidateRepo.Debit(ctx, participantID, input.StakePerHead); err != nil {
				if pkgerrors.IsCode(err, pkgerrors.CodeInsufficientBalance) {
					return pkgerrors.Newf(pkgerrors.CodeInsufficientFunds,
						"candidate %s cannot cover the stake of %d", participantID, input.StakePerHead)
				}
				return err
			}

			reference, err := ledger.GenerateReference(enums.TransactionTypeRegistrationFee)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reference")
			}
			entry := &models.Transaction{
				ID:          uuid.New(),
				Reference:   reference,
				CandidateID: participantID,
				Type:        enums.TransactionTypeRegistrationFee,
				Amount:      input.StakePerHead,
				Status:      enums.TransactionStatusCompleted,
			}
			if err := ledgerRepo.Create(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stake entry")
			}
			entryIDs = append(entryIDs, entry.ID)
		}

		if err := s.repo.WithTx(tx).Create(ctx, debate); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create debate")
		}
		if err := ledgerRepo.LinkDebate(ctx, entryIDs, debate.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link stake entries")
		}
		return s.emitDebateCreated(ctx, tx, debate, input.ActorID)
	})
	if err != nil {
		return nil, err
	}

	for range input.ParticipantIDs {
		s.metrics.IncEntryCreated(enums.TransactionTypeRegistrationFee.String())
		s.metrics.AddAmountMoved(enums.TransactionTypeRegistrationFee.String(), input.StakePerHead)
	}
	return debate, nil
}

// StartDebate moves a pending debate into play.
func (s *service) StartDebate(ctx context.Context, debateID, actorID uuid.UUID) (*models.Debate, error) {
	if debateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debate id required")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting admin id required")
	}

	debate, err := s.GetDebate(ctx, debateID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	flipped, err := s.repo.TransitionStatus(ctx, debateID, enums.DebateStatusPending, enums.DebateStatusInProgress, map[string]any{
		"started_at": now,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start debate")
	}
	if !flipped {
		return nil, pkgerrors.Newf(pkgerrors.CodeInvalidTransition, "debate is %s, only a pending debate can start", debate.Status)
	}

	debate.Status = enums.DebateStatusInProgress
	debate.StartedAt = &now
	return debate, nil
}

// CloseDebate settles a running debate: the winner is credited their share,
// win/loss tallies move, and a completed winnings entry is journaled, all in
// one transaction with the status flip.
func (s *service) CloseDebate(ctx context.Context, input CloseInput) (*models.Debate, error) {
	if input.DebateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debate id required")
	}
	if input.WinnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "winner id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting admin id required")
	}

	var settled *models.Debate
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		candidateRepo := s.candidates.WithTx(tx)
		ledgerRepo := s.ledger.WithTx(tx)

		debate, err := repo.FindByID(ctx, input.DebateID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "debate not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load debate")
		}
		if debate.Status != enums.DebateStatusInProgress {
			return pkgerrors.Newf(pkgerrors.CodeInvalidTransition, "debate is %s, only a running debate can close", debate.Status)
		}
		if !containsID(debate.ParticipantIDs, input.WinnerID) {
			return pkgerrors.Newf(pkgerrors.CodeNotAParticipant, "candidate %s is not a participant of this debate", input.WinnerID)
		}

		now := time.Now()
		flipped, err := repo.TransitionStatus(ctx, debate.ID, enums.DebateStatusInProgress, enums.DebateStatusCompleted, map[string]any{
			"winner_id": input.WinnerID,
			"ended_at":  now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close debate")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "debate was closed concurrently")
		}

		if err := candidateRepo.Credit(ctx, input.WinnerID, debate.WinnerAmount); err != nil {
			return err
		}
		for _, participantID := range debate.ParticipantIDs {
			if err := candidateRepo.RecordResult(ctx, participantID, participantID == input.WinnerID); err != nil {
				return err
			}
		}

		reference, err := ledger.GenerateReference(enums.TransactionTypeDebateWinnings)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reference")
		}
		entry := &models.Transaction{
			ID:          uuid.New(),
			Reference:   reference,
			CandidateID: input.WinnerID,
			Type:        enums.TransactionTypeDebateWinnings,
			Amount:      debate.WinnerAmount,
			Status:      enums.TransactionStatusCompleted,
			DebateID:    &debate.ID,
		}
		if err := ledgerRepo.Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create winnings entry")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventDebateClosed,
			AggregateType: enums.AggregateDebate,
			AggregateID:   debate.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{ActorID: input.ActorID, Role: "admin"},
			Data: payloads.DebateClosedEvent{
				DebateID:     debate.ID,
				WinnerID:     input.WinnerID,
				WinnerAmount: debate.WinnerAmount,
				OrganizerFee: debate.OrganizerFee,
				TotalPool:    debate.TotalPool,
				ClosedBy:     input.ActorID,
				ClosedAt:     now,
			},
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return err
		}

		debate.Status = enums.DebateStatusCompleted
		debate.WinnerID = &input.WinnerID
		debate.EndedAt = &now
		settled = debate
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncEntryCreated(enums.TransactionTypeDebateWinnings.String())
	s.metrics.AddAmountMoved(enums.TransactionTypeDebateWinnings.String(), settled.WinnerAmount)
	if s.logg != nil {
		logCtx := s.logg.WithDebateID(ctx, settled.ID.String())
		logCtx = s.logg.WithCandidateID(logCtx, input.WinnerID.String())
		s.logg.Info(logCtx, "debate settled")
	}
	return settled, nil
}

// UpdateScores replaces the score sheet of a running debate and mirrors each
// score onto the candidate's final score for the ranking.
func (s *service) UpdateScores(ctx context.Context, input UpdateScoresInput) (*models.Debate, error) {
	if input.DebateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debate id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting admin id required")
	}
	if len(input.Scores) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one score required")
	}
	for _, score := range input.Scores {
		if score.Score < MinScore || score.Score > MaxScore {
			return nil, pkgerrors.Newf(pkgerrors.CodeInvalidScore,
				"score %d for candidate %s is outside %d to %d", score.Score, score.CandidateID, MinScore, MaxScore)
		}
	}

	var updated *models.Debate
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		candidateRepo := s.candidates.WithTx(tx)

		debate, err := repo.FindByID(ctx, input.DebateID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "debate not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load debate")
		}
		if debate.Status != enums.DebateStatusInProgress {
			return pkgerrors.Newf(pkgerrors.CodeInvalidTransition, "debate is %s, scores apply to a running debate only", debate.Status)
		}
		for _, score := range input.Scores {
			if !containsID(debate.ParticipantIDs, score.CandidateID) {
				return pkgerrors.Newf(pkgerrors.CodeNotAParticipant, "candidate %s is not a participant of this debate", score.CandidateID)
			}
		}

		sheet, err := json.Marshal(input.Scores)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal scores")
		}
		replaced, err := repo.ReplaceScores(ctx, debate.ID, sheet)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace scores")
		}
		if !replaced {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "debate left play before scores were saved")
		}

		for _, score := range input.Scores {
			if err := candidateRepo.SetFinalScore(ctx, score.CandidateID, score.Score); err != nil {
				return err
			}
		}

		debate.Scores = sheet
		updated = debate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) emitDebateCreated(ctx context.Context, tx *gorm.DB, debate *models.Debate, actorID uuid.UUID) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventDebateCreated,
		AggregateType: enums.AggregateDebate,
		AggregateID:   debate.ID,
		Version:       1,
		Actor:         &outbox.ActorRef{ActorID: actorID, Role: "admin"},
		Data: payloads.DebateCreatedEvent{
			DebateID:      debate.ID,
			Category:      debate.Category,
			ParticipantID: debate.ParticipantIDs,
			TotalPool:     debate.TotalPool,
			StakePerHead:  debate.StakePerHead,
			FundingSource: debate.FundingSource,
		},
	}
	return s.outbox.Emit(ctx, tx, event)
}

// checkParticipants loads the lineup and verifies every member exists, has a
// validated registration fee, and belongs to the debate's category.
func (s *service) checkParticipants(ctx context.Context, candidateRepo candidates.Repository, ids []uuid.UUID, category enums.Category) error {
	rows, err := candidateRepo.FindByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load participants")
	}

	found := make(map[uuid.UUID]models.Candidate, len(rows))
	for _, row := range rows {
		found[row.ID] = row
	}

	for _, id := range ids {
		candidate, ok := found[id]
		if !ok {
			return pkgerrors.Newf(pkgerrors.CodeNotFound, "candidate %s not found", id)
		}
		if candidate.Status != enums.CandidateStatusEligible || !candidate.FeePaid {
			return pkgerrors.Newf(pkgerrors.CodeInsufficientParticipants,
				"candidate %s is not eligible to debate", id)
		}
		if candidate.Category != category {
			return pkgerrors.Newf(pkgerrors.CodeCategoryMismatch,
				"candidate %s belongs to %s, debate is %s", id, candidate.Category, category)
		}
	}
	return nil
}

// checkStakeFunding reports every underfunded participant in one error so the
// organizer learns the full shortfall at once.
func (s *service) checkStakeFunding(ctx context.Context, candidateRepo candidates.Repository, ids []uuid.UUID, stake int64) error {
	rows, err := candidateRepo.FindByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load participants")
	}

	var underfunded []string
	for _, row := range rows {
		if row.Balance < stake {
			underfunded = append(underfunded, fmt.Sprintf("%s (balance %d)", row.ID, row.Balance))
		}
	}
	if len(underfunded) > 0 {
		return pkgerrors.Newf(pkgerrors.CodeInsufficientFunds,
			"stake of %d not covered by: %s", stake, strings.Join(underfunded, ", "))
	}
	return nil
}

func validateLineup(theme string, category enums.Category, ids []uuid.UUID, actorID uuid.UUID) error {
	if strings.TrimSpace(theme) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "theme required")
	}
	if !category.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid category %q", category)
	}
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "acting admin id required")
	}
	if len(ids) != money.DebateParticipants {
		return pkgerrors.Newf(pkgerrors.CodeInsufficientParticipants,
			"a debate needs exactly %d participants, got %d", money.DebateParticipants, len(ids))
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "participant id required")
		}
		if _, dup := seen[id]; dup {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "candidate %s listed twice", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func containsID(ids dbtypes.UUIDArray, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
