package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateCandidate   OutboxAggregateType = "candidate"
	AggregateTransaction OutboxAggregateType = "transaction"
	AggregateDebate      OutboxAggregateType = "debate"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateCandidate,
	AggregateTransaction,
	AggregateDebate,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventCandidateRegistered OutboxEventType = "candidate_registered"
	EventPaymentValidated    OutboxEventType = "payment_validated"
	EventWithdrawalRequested OutboxEventType = "withdrawal_requested"
	EventTransactionResolved OutboxEventType = "transaction_resolved"
	EventDebateCreated       OutboxEventType = "debate_created"
	EventDebateClosed        OutboxEventType = "debate_closed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventCandidateRegistered,
	EventPaymentValidated,
	EventWithdrawalRequested,
	EventTransactionResolved,
	EventDebateCreated,
	EventDebateClosed,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason explains why an outbox row was parked in the DLQ.
type OutboxDLQErrorReason string

const (
	DLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts_exceeded"
	DLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

// IsValid reports whether the value is known.
func (r OutboxDLQErrorReason) IsValid() bool {
	return r == DLQReasonMaxAttempts || r == DLQReasonNonRetryable
}
