package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/service"
)

type LedgerServicer interface {
	GetUserBalance(ctx context.Context, userID int64) (*service.UserBalance, error)
	GetTransactions(ctx context.Context, userID int64, limit uint) ([]domain.BalanceTransaction, error)
	AdjustBalance(ctx context.Context, cmd service.AdjustBalanceCommand) (*service.AdjustBalanceResult, error)
}

type OrderServicer interface {
	Get(ctx context.Context, kind domain.OrderKind, id int64) (*domain.Order, error)
	Transition(ctx context.Context, cmd service.TransitionCommand) (*service.TransitionResult, error)
}

type FulfillmentServicer interface {
	Fulfill(ctx context.Context, cmd service.FulfillCommand) (*service.FulfillmentResult, error)
}

type BalanceRequestServicer interface {
	Create(ctx context.Context, cmd service.CreateBalanceRequestCommand) (*domain.BalanceRequest, error)
	Approve(ctx context.Context, cmd service.DecideBalanceRequestCommand) (*service.BalanceRequestResult, error)
	Reject(ctx context.Context, cmd service.DecideBalanceRequestCommand) (*service.BalanceRequestResult, error)
	ApplyGatewayResult(ctx context.Context, cmd service.GatewayResultCommand) (*service.BalanceRequestResult, error)
}

type CouponServicer interface {
	Create(ctx context.Context, cmd service.CreateCouponCommand) (*domain.Coupon, error)
	Validate(ctx context.Context, check service.CouponCheck) (*service.CouponQuote, error)
	Redeem(ctx context.Context, check service.CouponCheck) (*service.CouponQuote, error)
}

type OutboxServicer interface {
	List(ctx context.Context, status domain.OutboxStatus, limit uint) ([]domain.OutboxEvent, error)
	Resend(ctx context.Context, cmd service.ResendCommand) (*service.ResendResult, error)
}

type AuditServicer interface {
	History(ctx context.Context, targetType string, targetID int64, limit uint) ([]domain.AuditEntry, error)
}
