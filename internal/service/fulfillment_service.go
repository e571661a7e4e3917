package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const generatedPasswordLen = 16

// FulfillmentService provisions what a completed order entitles the customer to. It runs at most once per
// order, tracked by orders.fulfilled_at.
type FulfillmentService struct {
	base
	hasher PasswordHasher
}

func NewFulfillmentService(
	u uow.UOW,
	hasher PasswordHasher,
	audit *AuditService,
	l *logrus.Logger,
) *FulfillmentService {
	return &FulfillmentService{
		base:   newBase(u, audit, l, "fulfillment"),
		hasher: hasher,
	}
}

type FulfillCommand struct {
	ActorID int64
	Kind    domain.OrderKind
	OrderID int64
}

type FulfillmentResult struct {
	Order            *domain.Order
	AlreadyFulfilled bool
	// Account is set for package orders.
	Account       *domain.ServiceAccount
	AccountReused bool
	Warnings      []error
}

// Fulfill provisions a completed order. A call on an order that is already fulfilled does nothing and
// reports AlreadyFulfilled.
//
// Returns domain.ErrConflict when the order is not completed.
func (s *FulfillmentService) Fulfill(ctx context.Context, cmd FulfillCommand) (*FulfillmentResult, error) {
	if !cmd.Kind.Valid() || cmd.OrderID <= 0 {
		return nil, fmt.Errorf("fulfill: %w: %s order %d", domain.ErrValidation, cmd.Kind, cmd.OrderID)
	}

	var result FulfillmentResult
	var eventIDs []uuid.UUID

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := txRepo[OrderRepository](tx, repoargs.OrderRepoName)
		if orderRepoErr != nil {
			return orderRepoErr
		}
		userRepo, userRepoErr := txRepo[UserRepository](tx, repoargs.UserRepoName)
		if userRepoErr != nil {
			return userRepoErr
		}

		order, lockErr := orderRepo.LockByID(c, cmd.Kind, cmd.OrderID)
		if lockErr != nil {
			return notFoundAsValidation(lockErr, "order", cmd.OrderID)
		}
		result.Order = order
		if order.Status != domain.OrderStatusCompleted {
			return fmt.Errorf("%w: %s is %s, not completed", domain.ErrConflict, orderTitle(order), order.Status)
		}
		if order.Fulfilled() {
			result.AlreadyFulfilled = true
			return nil
		}

		user, userErr := userRepo.FindByID(c, order.UserID)
		if userErr != nil {
			return userErr //nolint:wrapcheck
		}

		var email domain.EmailPayload
		switch order.Kind {
		case domain.OrderKindPackage:
			account, reused, password, accErr := s.provisionAccount(c, tx, order)
			if accErr != nil {
				return accErr
			}
			result.Account = account
			result.AccountReused = reused
			if reused {
				email = accountReusedEmail(user, order, account.Login)
			} else {
				email = credentialsEmail(user, order, account.Login, password)
			}
		case domain.OrderKindProduct:
			email = deliveryEmail(user, order)
		}

		now := s.now()
		if markErr := orderRepo.MarkFulfilled(c, order.Kind, order.ID, now); markErr != nil {
			return markErr //nolint:wrapcheck
		}
		order.FulfilledAt = &now

		drafts := []outboxDraft{{
			channel:       domain.OutboxChannelEmail,
			eventType:     domain.EventOrderFulfilled,
			aggregateType: domain.AggregateOrder,
			aggregateID:   order.ID,
			payload:       email,
		}}
		if order.ExternalReference != "" {
			drafts = append(drafts, outboxDraft{
				channel:       domain.OutboxChannelWebhook,
				eventType:     domain.EventOrderFulfilled,
				aggregateType: domain.AggregateOrder,
				aggregateID:   order.ID,
				integration:   order.Integration,
				payload:       webhookPayload(domain.EventOrderFulfilled, order, order.Status),
			})
		}
		ids, enqueueErr := s.enqueue(c, tx, drafts...)
		if enqueueErr != nil {
			return enqueueErr
		}
		eventIDs = ids
		return nil
	})
	if txErr != nil {
		return nil, serviceErr("fulfill", txErr)
	}

	log := s.l.WithFields(logrus.Fields{"kind": cmd.Kind, "orderID": cmd.OrderID})
	if result.AlreadyFulfilled {
		log.Debug("order already fulfilled")
		return &result, nil
	}
	log.WithField("accountReused", result.AccountReused).Info("order fulfilled")

	result.Warnings = s.dispatchNow(ctx, eventIDs)

	s.record(ctx, AuditRecord{
		ActorID:     cmd.ActorID,
		Action:      "order.fulfilled",
		TargetType:  domain.AggregateOrder,
		TargetID:    cmd.OrderID,
		Description: fmt.Sprintf("%s fulfilled", orderTitle(result.Order)),
	})
	return &result, nil
}

// provisionAccount reuses the account of the order owner or creates one. password is only set for a new
// account.
func (s *FulfillmentService) provisionAccount(
	ctx context.Context,
	tx uow.TX,
	order *domain.Order,
) (account *domain.ServiceAccount, reused bool, password string, err error) {
	accRepo, repoErr := txRepo[ServiceAccountRepository](tx, repoargs.ServiceAccountRepoName)
	if repoErr != nil {
		return nil, false, "", repoErr
	}

	existing, findErr := accRepo.FindByUserID(ctx, order.UserID)
	if findErr == nil {
		return existing, true, "", nil
	}
	if !errors.Is(findErr, domain.ErrRecordNotFound) {
		return nil, false, "", findErr //nolint:wrapcheck
	}

	password = generatePassword()
	hash, hashErr := s.hasher.HashPassword(password)
	if hashErr != nil {
		return nil, false, "", fmt.Errorf("hash generated password: %w", hashErr)
	}

	created, createErr := accRepo.Create(ctx, repoargs.CreateServiceAccount{
		UserID:       order.UserID,
		OrderID:      order.ID,
		Login:        fmt.Sprintf("u%d-%s", order.UserID, uuid.NewString()[:8]),
		PasswordHash: hash,
	})
	if createErr != nil {
		return nil, false, "", createErr //nolint:wrapcheck
	}
	return created, false, password, nil
}

// generatePassword returns generatedPasswordLen base32 characters from crypto/rand, 80 bits of entropy.
func generatePassword() string {
	return rand.Text()[:generatedPasswordLen]
}
