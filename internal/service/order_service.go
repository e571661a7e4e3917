package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/metrics"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type OrderService struct {
	base
	orderRepo   OrderRepository
	ledger      *LedgerService
	fulfillment *FulfillmentService
}

func NewOrderService(
	u uow.UOW,
	ledger *LedgerService,
	fulfillment *FulfillmentService,
	audit *AuditService,
	l *logrus.Logger,
) (*OrderService, error) {
	orderRepo, orderRepoErr := uowRepo[OrderRepository](u, repoargs.OrderRepoName)
	if orderRepoErr != nil {
		return nil, orderRepoErr
	}
	return &OrderService{
		base:        newBase(u, audit, l, "orders"),
		orderRepo:   orderRepo,
		ledger:      ledger,
		fulfillment: fulfillment,
	}, nil
}

type TransitionCommand struct {
	ActorID      int64
	Kind         domain.OrderKind
	OrderID      int64
	TargetStatus domain.OrderStatusType
	AdminNote    string
	// ExpectedStatus, when set, is the status the operator saw. The transition is a Conflict if the order
	// has moved on since.
	ExpectedStatus domain.OrderStatusType
}

type TransitionResult struct {
	Order          *domain.Order
	PreviousStatus domain.OrderStatusType
	// Delta is the signed balance change, zero when the ledger was not touched.
	Delta       decimal.Decimal
	Transaction *domain.BalanceTransaction
	Fulfillment *FulfillmentResult
	// Warnings are failures after commit: notification delivery and fulfillment. The transition stays.
	Warnings []error
}

// Transition moves an order to cmd.TargetStatus, applying the balance delta of the transition table in the
// same transaction.
//
// Errors:
//   - domain.ErrValidation: unknown kind, order or target status. Nothing is locked.
//   - domain.ErrConflict: the order already has the target status, the move is not permitted or the order
//     is not in cmd.ExpectedStatus.
//   - domain.ErrInsufficientFunds: the transition needs a debit above the user balance.
//   - domain.ErrPersistence: storage failure, the transaction is rolled back.
func (s *OrderService) Transition(ctx context.Context, cmd TransitionCommand) (*TransitionResult, error) {
	start := time.Now()
	result, err := s.transition(ctx, cmd)

	outcome := metrics.ResultSuccess
	if err != nil {
		outcome = metrics.ResultFailure
	}
	metrics.RecordTransition(string(cmd.Kind), string(cmd.TargetStatus), outcome, time.Since(start).Seconds())
	return result, err
}

func (s *OrderService) transition(ctx context.Context, cmd TransitionCommand) (*TransitionResult, error) {
	if cmd.OrderID <= 0 {
		return nil, fmt.Errorf("transition: %w: invalid order id %d", domain.ErrValidation, cmd.OrderID)
	}
	if err := domain.ValidateTarget(cmd.Kind, cmd.TargetStatus); err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}
	if cmd.ExpectedStatus != "" {
		if err := domain.ValidateTarget(cmd.Kind, cmd.ExpectedStatus); err != nil {
			return nil, fmt.Errorf("transition: expected status: %w", err)
		}
	}

	log := s.l.WithFields(logrus.Fields{
		"actorID": cmd.ActorID,
		"kind":    cmd.Kind,
		"orderID": cmd.OrderID,
		"target":  cmd.TargetStatus,
	})

	var result TransitionResult
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
		if cmd.ExpectedStatus != "" && order.Status != cmd.ExpectedStatus {
			return fmt.Errorf("%w: order is %s, expected %s", domain.ErrConflict, order.Status, cmd.ExpectedStatus)
		}

		plan, planErr := domain.PlanTransition(order.Kind, order.Status, cmd.TargetStatus, order.Amount)
		if planErr != nil {
			return planErr //nolint:wrapcheck
		}
		result.PreviousStatus = order.Status
		result.Delta = plan.Delta

		var user *domain.User
		if direction, amount, ok := plan.Direction(); ok {
			locked, userLockErr := userRepo.LockByID(c, order.UserID)
			if userLockErr != nil {
				return userLockErr //nolint:wrapcheck
			}
			user = locked

			entry, applyErr := s.ledger.Apply(c, tx, LedgerEntryArgs{
				User:          user,
				Direction:     direction,
				Amount:        amount,
				Description:   fmt.Sprintf("%s: %s -> %s", orderTitle(order), plan.From, plan.To),
				ReferenceType: ReferenceOrder,
				ReferenceID:   order.ID,
			})
			if applyErr != nil {
				return applyErr
			}
			result.Transaction = entry
		}

		updated, updErr := orderRepo.UpdateStatus(c, repoargs.OrderStatusUpdate{
			Kind:      order.Kind,
			ID:        order.ID,
			Status:    cmd.TargetStatus,
			AdminNote: cmd.AdminNote,
		})
		if updErr != nil {
			return updErr //nolint:wrapcheck
		}
		result.Order = updated

		ids, enqueueErr := s.enqueue(c, tx, s.transitionDrafts(updated, plan, user, cmd.ActorID)...)
		if enqueueErr != nil {
			return enqueueErr
		}
		eventIDs = ids
		return nil
	})
	if txErr != nil {
		log.WithError(txErr).Info("transition rejected")
		return nil, serviceErr("transition", txErr)
	}

	log.WithFields(logrus.Fields{
		"from":  result.PreviousStatus,
		"delta": result.Delta.String(),
	}).Info("order status changed")

	result.Warnings = append(result.Warnings, s.dispatchNow(ctx, eventIDs)...)

	if result.Order.Status == domain.OrderStatusCompleted && s.fulfillment != nil {
		fulfilled, fulfillErr := s.fulfillment.Fulfill(ctx, FulfillCommand{
			ActorID: cmd.ActorID,
			Kind:    cmd.Kind,
			OrderID: cmd.OrderID,
		})
		if fulfillErr != nil {
			log.WithError(fulfillErr).Error("fulfillment after completion failed")
			result.Warnings = append(result.Warnings, fmt.Errorf("fulfillment: %w", fulfillErr))
		} else {
			result.Fulfillment = fulfilled
			result.Order = fulfilled.Order
			result.Warnings = append(result.Warnings, fulfilled.Warnings...)
		}
	}

	s.record(ctx, AuditRecord{
		ActorID:     cmd.ActorID,
		Action:      "order.status_changed",
		TargetType:  domain.AggregateOrder,
		TargetID:    cmd.OrderID,
		Description: fmt.Sprintf("%s: %s -> %s", orderTitle(result.Order), result.PreviousStatus, result.Order.Status),
	})
	return &result, nil
}

// transitionDrafts builds the notifications of a committed transition: the integration webhook, the admin
// chat message and a refund email for cancellations that credited the balance.
func (s *OrderService) transitionDrafts(
	o *domain.Order,
	plan domain.Transition,
	user *domain.User,
	actorID int64,
) []outboxDraft {
	drafts := make([]outboxDraft, 0, 3)
	if o.ExternalReference != "" {
		drafts = append(drafts, outboxDraft{
			channel:       domain.OutboxChannelWebhook,
			eventType:     domain.EventOrderStatusChanged,
			aggregateType: domain.AggregateOrder,
			aggregateID:   o.ID,
			integration:   o.Integration,
			payload:       webhookPayload(domain.EventOrderStatusChanged, o, plan.From),
		})
	}
	drafts = append(drafts, outboxDraft{
		channel:       domain.OutboxChannelChat,
		eventType:     domain.EventOrderStatusChanged,
		aggregateType: domain.AggregateOrder,
		aggregateID:   o.ID,
		payload:       domain.ChatPayload{Text: transitionChatText(o, plan.From, plan.Delta, actorID)},
	})
	if plan.To == domain.OrderStatusCancelled && plan.Delta.IsPositive() && user != nil {
		drafts = append(drafts, outboxDraft{
			channel:       domain.OutboxChannelEmail,
			eventType:     domain.EventOrderStatusChanged,
			aggregateType: domain.AggregateOrder,
			aggregateID:   o.ID,
			payload:       refundEmail(user, o, plan.Delta),
		})
	}
	return drafts
}

func (s *OrderService) Get(ctx context.Context, kind domain.OrderKind, id int64) (*domain.Order, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("get order: %w: unknown order kind %q", domain.ErrValidation, kind)
	}
	order, err := s.orderRepo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, serviceErr("get order", err)
	}
	return order, nil
}
