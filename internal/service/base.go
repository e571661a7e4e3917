package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultNotifyTimeout = 5 * time.Second

// base holds what every command service needs after commit: audit, immediate dispatch and a clock.
type base struct {
	uow           uow.UOW
	l             *logrus.Entry
	audit         *AuditService
	dispatcher    Dispatcher
	now           func() time.Time
	notifyTimeout time.Duration
}

func newBase(u uow.UOW, audit *AuditService, l *logrus.Logger, module string) base {
	return base{
		uow:           u,
		l:             l.WithFields(logrus.Fields{"component": "service", "module": module}),
		audit:         audit,
		now:           time.Now,
		notifyTimeout: defaultNotifyTimeout,
	}
}

// SetDispatcher enables immediate delivery of outbox events after commit.
func (b *base) SetDispatcher(d Dispatcher) {
	b.dispatcher = d
}

// SetClock replaces time.Now.
func (b *base) SetClock(now func() time.Time) {
	b.now = now
}

// SetNotifyTimeout bounds the immediate dispatch attempt.
func (b *base) SetNotifyTimeout(d time.Duration) {
	b.notifyTimeout = d
}

// dispatchNow tries to deliver ids once. It only bounds the response time, undelivered events are retried by
// the background dispatcher.
func (b *base) dispatchNow(ctx context.Context, ids []uuid.UUID) []error {
	if b.dispatcher == nil || len(ids) == 0 {
		return nil
	}
	dispatchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.notifyTimeout)
	defer cancel()

	warnings := b.dispatcher.DispatchNow(dispatchCtx, ids)
	for _, w := range warnings {
		b.l.WithError(w).Warn("notification delivery failed")
	}
	return warnings
}

// outboxDraft is an outbox event before it gets an id.
type outboxDraft struct {
	channel       domain.OutboxChannel
	eventType     string
	aggregateType string
	aggregateID   int64
	integration   string
	payload       any
}

// enqueue writes drafts to the outbox inside tx.
func (b *base) enqueue(ctx context.Context, tx uow.TX, drafts ...outboxDraft) ([]uuid.UUID, error) {
	if len(drafts) == 0 {
		return nil, nil
	}
	repo, repoErr := txRepo[OutboxRepository](tx, repoargs.OutboxRepoName)
	if repoErr != nil {
		return nil, repoErr
	}

	ids := make([]uuid.UUID, 0, len(drafts))
	for _, d := range drafts {
		payload, jsonErr := json.Marshal(d.payload)
		if jsonErr != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", d.eventType, jsonErr)
		}
		event, createErr := repo.Create(ctx, repoargs.CreateOutboxEvent{
			ID:            uuid.New(),
			Channel:       d.channel,
			EventType:     d.eventType,
			AggregateType: d.aggregateType,
			AggregateID:   d.aggregateID,
			Integration:   d.integration,
			Payload:       payload,
			NextAttemptAt: b.now(),
		})
		if createErr != nil {
			return nil, createErr //nolint:wrapcheck
		}
		ids = append(ids, event.ID)
	}
	return ids, nil
}

func (b *base) record(ctx context.Context, r AuditRecord) {
	if b.audit == nil {
		return
	}
	b.audit.Record(ctx, r)
}

func txRepo[T any](tx uow.TX, name repoargs.RepositoryName) (T, error) {
	return uow.GetAs[T](tx, uow.RepositoryName(name)) //nolint:wrapcheck
}

func uowRepo[T any](u uow.UOW, name repoargs.RepositoryName) (T, error) {
	return uow.GetRepositoryAs[T](u, uow.RepositoryName(name)) //nolint:wrapcheck
}

// serviceErr wraps err with the operation name. Errors outside the domain taxonomy are storage failures and
// become domain.ErrPersistence.
func serviceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKnown(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %s", op, domain.ErrPersistence, err.Error())
}

// notFoundAsValidation marks a missing target of a command as a validation error while keeping
// domain.ErrRecordNotFound in the chain.
func notFoundAsValidation(err error, what string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrRecordNotFound) {
		return fmt.Errorf("%w: unknown %s %v: %w", domain.ErrValidation, what, id, err)
	}
	return err
}
