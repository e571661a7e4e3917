package repoargs

import (
	"encoding/json"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/google/uuid"
)

type CreateOutboxEvent struct {
	ID            uuid.UUID
	Channel       domain.OutboxChannel
	EventType     string
	AggregateType string
	AggregateID   int64
	Integration   string
	Payload       json.RawMessage
	NextAttemptAt time.Time
}

// ClaimOutbox selects events for delivery. Claimed rows are leased until Now+Lease.
type ClaimOutbox struct {
	Now   time.Time
	Lease time.Duration
	Limit uint
	// IDs restricts the claim to these events when not empty.
	IDs []uuid.UUID
}

type OutboxRetry struct {
	ID            uuid.UUID
	NextAttemptAt time.Time
	LastError     string
}
