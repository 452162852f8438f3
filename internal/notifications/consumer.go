package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
	"github.com/arbrepalabres/backend/pkg/logger"
	"github.com/arbrepalabres/backend/pkg/outbox"
	"github.com/arbrepalabres/backend/pkg/outbox/idempotency"
	"github.com/arbrepalabres/backend/pkg/outbox/payloads"
)

const candidateNotificationConsumer = "candidate-notifications"

type creator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches ledger and debate events and turns them into candidate
// notifications. Notification writes happen outside the emitting transaction,
// so a failure here never rolls back a ledger operation.
type Consumer struct {
	repo         creator
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a candidate notification consumer.
func NewConsumer(repo creator, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	builder, ok := builders[eventType]
	if !ok {
		c.logg.Info(logCtx, "skipping event without notification mapping")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, candidateNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	notification, err := builder(envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to build notification", err)
		_ = c.idempotency.Delete(ctx, candidateNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	if notification == nil {
		c.logg.Info(logCtx, "event carries nothing to notify")
		return processResult{ack: true}
	}

	if err := c.repo.Create(ctx, notification); err != nil {
		c.logg.Error(logCtx, "failed to persist notification", err)
		_ = c.idempotency.Delete(ctx, candidateNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	logCtx = c.logg.WithField(logCtx, "candidate_id", notification.CandidateID.String())
	c.logg.Info(logCtx, "candidate notified")
	return processResult{ack: true}
}

// builders maps each handled event type to a notification factory. A nil
// notification with a nil error means the event is deliberately skipped.
var builders = map[enums.OutboxEventType]func(json.RawMessage) (*models.Notification, error){
	enums.EventPaymentValidated:    buildPaymentValidated,
	enums.EventWithdrawalRequested: buildWithdrawalRequested,
	enums.EventTransactionResolved: buildTransactionResolved,
	enums.EventDebateClosed:        buildDebateClosed,
}

func buildPaymentValidated(data json.RawMessage) (*models.Notification, error) {
	var payload payloads.PaymentValidatedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode payment_validated payload: %w", err)
	}
	if payload.CandidateID == uuid.Nil {
		return nil, fmt.Errorf("candidate id missing")
	}
	return &models.Notification{
		CandidateID: payload.CandidateID,
		Type:        enums.NotificationPayment,
		Title:       "Registration fee validated",
		Message:     fmt.Sprintf("Your registration fee of %d FCFA has been validated. You are now eligible to debate.", payload.Amount),
		Reference:   stringPtr(payload.Reference),
	}, nil
}

func buildWithdrawalRequested(data json.RawMessage) (*models.Notification, error) {
	var payload payloads.WithdrawalRequestedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode withdrawal_requested payload: %w", err)
	}
	if payload.CandidateID == uuid.Nil {
		return nil, fmt.Errorf("candidate id missing")
	}
	return &models.Notification{
		CandidateID: payload.CandidateID,
		Type:        enums.NotificationWithdrawal,
		Title:       "Withdrawal requested",
		Message:     fmt.Sprintf("Your withdrawal of %d FCFA via %s is pending validation. Remaining balance: %d FCFA.", payload.Amount, payload.Method, payload.NewBalance),
		Reference:   stringPtr(payload.Reference),
	}, nil
}

func buildTransactionResolved(data json.RawMessage) (*models.Notification, error) {
	var payload payloads.TransactionResolvedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode transaction_resolved payload: %w", err)
	}
	if payload.CandidateID == uuid.Nil {
		return nil, fmt.Errorf("candidate id missing")
	}

	switch {
	case payload.Type == enums.TransactionTypeWithdrawal && payload.Status == enums.TransactionStatusCompleted:
		return &models.Notification{
			CandidateID: payload.CandidateID,
			Type:        enums.NotificationWithdrawal,
			Title:       "Withdrawal completed",
			Message:     fmt.Sprintf("Your withdrawal of %d FCFA has been paid out.", payload.Amount),
			Reference:   stringPtr(payload.Reference),
		}, nil
	case payload.Type == enums.TransactionTypeWithdrawal && payload.Status == enums.TransactionStatusRejected:
		return &models.Notification{
			CandidateID: payload.CandidateID,
			Type:        enums.NotificationWithdrawal,
			Title:       "Withdrawal rejected",
			Message:     withReason(fmt.Sprintf("Your withdrawal of %d FCFA was rejected and the amount returned to your balance.", payload.Amount), payload.RejectionReason),
			Reference:   stringPtr(payload.Reference),
		}, nil
	case payload.Type == enums.TransactionTypeRegistrationFee && payload.Status == enums.TransactionStatusRejected:
		return &models.Notification{
			CandidateID: payload.CandidateID,
			Type:        enums.NotificationPayment,
			Title:       "Registration fee rejected",
			Message:     withReason("Your registration fee payment could not be validated.", payload.RejectionReason),
			Reference:   stringPtr(payload.Reference),
		}, nil
	}

	// validated registration fees are announced through payment_validated
	return nil, nil
}

func buildDebateClosed(data json.RawMessage) (*models.Notification, error) {
	var payload payloads.DebateClosedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode debate_closed payload: %w", err)
	}
	if payload.WinnerID == uuid.Nil {
		return nil, fmt.Errorf("winner id missing")
	}
	reference := payload.DebateID.String()
	return &models.Notification{
		CandidateID: payload.WinnerID,
		Type:        enums.NotificationDebate,
		Title:       "Debate won",
		Message:     fmt.Sprintf("Congratulations, you won the debate. %d FCFA has been credited to your balance.", payload.WinnerAmount),
		Reference:   &reference,
	}, nil
}

func withReason(message, reason string) string {
	if reason == "" {
		return message
	}
	return fmt.Sprintf("%s Reason: %s", message, reason)
}

func stringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
