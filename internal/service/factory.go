package service

import (
	"fmt"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/sirupsen/logrus"
)

type AppServices struct {
	Ledger          *LedgerService
	Orders          *OrderService
	Fulfillment     *FulfillmentService
	BalanceRequests *BalanceRequestService
	Coupons         *CouponService
	Outbox          *OutboxService
	Audit           *AuditService
	Users           *UserService
}

type FactoryArgs struct {
	UOW       uow.UOW
	Logger    *logrus.Logger
	Hasher    PasswordHasher
	JWTSecret []byte
	// DebitPolicy of manual adjustments. Empty means domain.StrictDebit.
	DebitPolicy   domain.DebitPolicy
	NotifyTimeout time.Duration
}

func Factory(args FactoryArgs) (*AppServices, error) {
	policy := args.DebitPolicy
	if policy == "" {
		policy = domain.StrictDebit
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("service factory: %w: unknown debit policy %q", domain.ErrValidation, policy)
	}

	audit, auditErr := NewAuditService(args.UOW, args.Logger)
	if auditErr != nil {
		return nil, fmt.Errorf("service factory: %s", auditErr.Error())
	}

	ledger, ledgerErr := NewLedgerService(args.UOW, audit, args.Logger)
	if ledgerErr != nil {
		return nil, fmt.Errorf("service factory: %s", ledgerErr.Error())
	}
	ledger.SetDebitPolicy(policy)

	fulfillment := NewFulfillmentService(args.UOW, args.Hasher, audit, args.Logger)

	orders, ordersErr := NewOrderService(args.UOW, ledger, fulfillment, audit, args.Logger)
	if ordersErr != nil {
		return nil, fmt.Errorf("service factory: %s", ordersErr.Error())
	}

	requests, requestsErr := NewBalanceRequestService(args.UOW, ledger, audit, args.Logger)
	if requestsErr != nil {
		return nil, fmt.Errorf("service factory: %s", requestsErr.Error())
	}

	coupons, couponsErr := NewCouponService(args.UOW, audit, args.Logger)
	if couponsErr != nil {
		return nil, fmt.Errorf("service factory: %s", couponsErr.Error())
	}

	outbox, outboxErr := NewOutboxService(args.UOW, audit, args.Logger)
	if outboxErr != nil {
		return nil, fmt.Errorf("service factory: %s", outboxErr.Error())
	}

	users, usersErr := NewUserService(args.UOW, args.JWTSecret)
	if usersErr != nil {
		return nil, fmt.Errorf("service factory: %s", usersErr.Error())
	}

	services := &AppServices{
		Ledger:          ledger,
		Orders:          orders,
		Fulfillment:     fulfillment,
		BalanceRequests: requests,
		Coupons:         coupons,
		Outbox:          outbox,
		Audit:           audit,
		Users:           users,
	}
	if args.NotifyTimeout > 0 {
		for _, b := range services.bases() {
			b.SetNotifyTimeout(args.NotifyTimeout)
		}
	}
	return services, nil
}

// SetDispatcher enables immediate delivery after commit in every service that writes to the outbox.
func (a *AppServices) SetDispatcher(d Dispatcher) {
	for _, b := range a.bases() {
		b.SetDispatcher(d)
	}
}

// SetClock replaces the clock of all services.
func (a *AppServices) SetClock(now func() time.Time) {
	for _, b := range a.bases() {
		b.SetClock(now)
	}
}

func (a *AppServices) bases() []*base {
	return []*base{
		&a.Ledger.base,
		&a.Orders.base,
		&a.Fulfillment.base,
		&a.BalanceRequests.base,
		&a.Coupons.base,
		&a.Outbox.base,
	}
}
