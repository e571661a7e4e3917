package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultOutboxListLimit uint = 100
	maxLastErrorLen             = 1000
)

// OutboxService is the storage side of notification delivery. The dispatcher claims and settles events
// through it, operators list and resend them.
type OutboxService struct {
	base
	repo OutboxRepository
}

func NewOutboxService(u uow.UOW, audit *AuditService, l *logrus.Logger) (*OutboxService, error) {
	repo, err := uowRepo[OutboxRepository](u, repoargs.OutboxRepoName)
	if err != nil {
		return nil, err
	}
	return &OutboxService{
		base: newBase(u, audit, l, "outbox"),
		repo: repo,
	}, nil
}

// Claim leases up to limit due events for lease.
func (s *OutboxService) Claim(ctx context.Context, limit uint, lease time.Duration) ([]domain.OutboxEvent, error) {
	return s.claim(ctx, repoargs.ClaimOutbox{Now: s.now(), Lease: lease, Limit: limit})
}

// ClaimByIDs leases the given events if they are due and not leased by someone else.
func (s *OutboxService) ClaimByIDs(
	ctx context.Context,
	ids []uuid.UUID,
	lease time.Duration,
) ([]domain.OutboxEvent, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.claim(ctx, repoargs.ClaimOutbox{Now: s.now(), Lease: lease, Limit: uint(len(ids)), IDs: ids})
}

func (s *OutboxService) claim(ctx context.Context, args repoargs.ClaimOutbox) ([]domain.OutboxEvent, error) {
	var events []domain.OutboxEvent
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repo, repoErr := txRepo[OutboxRepository](tx, repoargs.OutboxRepoName)
		if repoErr != nil {
			return repoErr
		}
		claimed, claimErr := repo.Claim(c, args)
		if claimErr != nil {
			return claimErr //nolint:wrapcheck
		}
		events = claimed
		return nil
	})
	if txErr != nil {
		return nil, serviceErr("claim outbox events", txErr)
	}
	return events, nil
}

func (s *OutboxService) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	return serviceErr("mark delivered", s.repo.MarkDelivered(ctx, id, s.now()))
}

func (s *OutboxService) MarkRetry(ctx context.Context, id uuid.UUID, next time.Time, cause error) error {
	return serviceErr("mark retry", s.repo.MarkRetry(ctx, repoargs.OutboxRetry{
		ID:            id,
		NextAttemptAt: next,
		LastError:     truncateError(cause),
	}))
}

func (s *OutboxService) MarkFailed(ctx context.Context, id uuid.UUID, cause error) error {
	return serviceErr("mark failed", s.repo.MarkFailed(ctx, id, truncateError(cause)))
}

func (s *OutboxService) List(ctx context.Context, status domain.OutboxStatus, limit uint) ([]domain.OutboxEvent, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("list outbox: %w: unknown status %q", domain.ErrValidation, status)
	}
	if limit == 0 {
		limit = defaultOutboxListLimit
	}
	events, err := s.repo.GetByStatus(ctx, status, limit)
	if err != nil {
		return nil, serviceErr("list outbox", err)
	}
	return events, nil
}

type ResendCommand struct {
	ActorID int64
	EventID uuid.UUID
}

type ResendResult struct {
	Event    *domain.OutboxEvent
	Warnings []error
}

// Resend puts an event back to pending with a fresh attempt budget, whatever its status, and tries to
// deliver it right away.
func (s *OutboxService) Resend(ctx context.Context, cmd ResendCommand) (*ResendResult, error) {
	if cmd.EventID == uuid.Nil {
		return nil, fmt.Errorf("resend: %w: empty event id", domain.ErrValidation)
	}
	event, err := s.repo.Requeue(ctx, cmd.EventID, s.now())
	if err != nil {
		return nil, serviceErr("resend", err)
	}
	s.l.WithFields(logrus.Fields{"eventID": event.ID, "actorID": cmd.ActorID}).Info("outbox event requeued")

	result := ResendResult{Event: event}
	result.Warnings = s.dispatchNow(ctx, []uuid.UUID{event.ID})

	s.record(ctx, AuditRecord{
		ActorID:     cmd.ActorID,
		Action:      "outbox.resent",
		TargetType:  event.AggregateType,
		TargetID:    event.AggregateID,
		Description: fmt.Sprintf("%s %s event %s requeued", event.Channel, event.EventType, event.ID),
	})
	return &result, nil
}

func truncateError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) <= maxLastErrorLen {
		return msg
	}
	// cut on a rune boundary, a split rune is not valid TEXT
	n := maxLastErrorLen
	for n > 0 && !utf8.RuneStart(msg[n]) {
		n--
	}
	return msg[:n]
}
