package service

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

// Dispatcher delivers freshly committed outbox events right away. Failures are returned as
// *domain.NotificationError, the events stay queued for the background dispatcher.
type Dispatcher interface {
	DispatchNow(ctx context.Context, ids []uuid.UUID) []error
}

type UserRepository interface {
	Create(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	LockByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error
}

type BalanceTransactionRepository interface {
	Create(ctx context.Context, args repoargs.BalanceTransactionCreate) (*domain.BalanceTransaction, error)
	GetByUserID(ctx context.Context, userID int64, limit uint) ([]domain.BalanceTransaction, error)
	GetUserBalance(ctx context.Context, userID int64) (*repoargs.BalanceAggregation, error)
}

type OrderRepository interface {
	Create(ctx context.Context, args repoargs.CreateOrder) (*domain.Order, error)
	FindByID(ctx context.Context, kind domain.OrderKind, id int64) (*domain.Order, error)
	LockByID(ctx context.Context, kind domain.OrderKind, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, args repoargs.OrderStatusUpdate) (*domain.Order, error)
	MarkFulfilled(ctx context.Context, kind domain.OrderKind, id int64, at time.Time) error
}

type BalanceRequestRepository interface {
	Create(ctx context.Context, args repoargs.CreateBalanceRequest) (*domain.BalanceRequest, error)
	FindByID(ctx context.Context, id int64) (*domain.BalanceRequest, error)
	LockByID(ctx context.Context, id int64) (*domain.BalanceRequest, error)
	Finalize(ctx context.Context, args repoargs.FinalizeBalanceRequest) (*domain.BalanceRequest, error)
}

type CouponRepository interface {
	Create(ctx context.Context, args repoargs.CreateCoupon) (*domain.Coupon, error)
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
	LockByCode(ctx context.Context, code string) (*domain.Coupon, error)
}

type CouponUsageRepository interface {
	Create(ctx context.Context, args repoargs.CreateCouponUsage) (*domain.CouponUsage, error)
	CountByCoupon(ctx context.Context, couponID int64) (int, error)
	CountByCouponAndUser(ctx context.Context, couponID, userID int64) (int, error)
}

type ServiceAccountRepository interface {
	Create(ctx context.Context, args repoargs.CreateServiceAccount) (*domain.ServiceAccount, error)
	FindByUserID(ctx context.Context, userID int64) (*domain.ServiceAccount, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, args repoargs.CreateOutboxEvent) (*domain.OutboxEvent, error)
	Claim(ctx context.Context, args repoargs.ClaimOutbox) ([]domain.OutboxEvent, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkRetry(ctx context.Context, args repoargs.OutboxRetry) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastErr string) error
	Requeue(ctx context.Context, id uuid.UUID, at time.Time) (*domain.OutboxEvent, error)
	GetByStatus(ctx context.Context, status domain.OutboxStatus, limit uint) ([]domain.OutboxEvent, error)
}

type AuditRepository interface {
	Create(ctx context.Context, args repoargs.CreateAuditEntry) (*domain.AuditEntry, error)
	GetByTarget(ctx context.Context, targetType string, targetID int64, limit uint) ([]domain.AuditEntry, error)
}
