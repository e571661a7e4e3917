package outbox

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/transport/webhook"
	"github.com/google/uuid"
)

// Store claims outbox events and records delivery outcomes.
type Store interface {
	Claim(ctx context.Context, limit uint, lease time.Duration) ([]domain.OutboxEvent, error)
	ClaimByIDs(ctx context.Context, ids []uuid.UUID, lease time.Duration) ([]domain.OutboxEvent, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	MarkRetry(ctx context.Context, id uuid.UUID, next time.Time, cause error) error
	MarkFailed(ctx context.Context, id uuid.UUID, cause error) error
}

type WebhookSender interface {
	Send(ctx context.Context, endpoint webhook.Endpoint, eventID uuid.UUID, body []byte) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type ChatNotifier interface {
	Notify(ctx context.Context, text string) error
}
