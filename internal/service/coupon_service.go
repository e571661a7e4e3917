package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/metrics"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CouponService struct {
	base
	couponRepo CouponRepository
	usageRepo  CouponUsageRepository
}

func NewCouponService(u uow.UOW, audit *AuditService, l *logrus.Logger) (*CouponService, error) {
	couponRepo, couponRepoErr := uowRepo[CouponRepository](u, repoargs.CouponRepoName)
	if couponRepoErr != nil {
		return nil, couponRepoErr
	}
	usageRepo, usageRepoErr := uowRepo[CouponUsageRepository](u, repoargs.CouponUsageRepoName)
	if usageRepoErr != nil {
		return nil, usageRepoErr
	}
	return &CouponService{
		base:       newBase(u, audit, l, "coupons"),
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
	}, nil
}

type CreateCouponCommand struct {
	ActorID        int64
	Code           string
	DiscountType   domain.DiscountType
	DiscountValue  decimal.Decimal
	Currency       string
	MinOrderAmount decimal.Decimal
	MaxUses        *int
	UsagePerUser   *int
	StartsAt       *time.Time
	ExpiresAt      *time.Time
	Inactive       bool
}

// Create stores a new coupon. Codes are unique regardless of case, a taken code is a domain.ErrConflict.
func (s *CouponService) Create(ctx context.Context, cmd CreateCouponCommand) (*domain.Coupon, error) {
	status := domain.CouponStatusActive
	if cmd.Inactive {
		status = domain.CouponStatusInactive
	}
	definition := domain.Coupon{
		Code:           domain.NormalizeCouponCode(cmd.Code),
		DiscountType:   cmd.DiscountType,
		DiscountValue:  cmd.DiscountValue,
		Currency:       strings.ToUpper(strings.TrimSpace(cmd.Currency)),
		MinOrderAmount: cmd.MinOrderAmount,
		MaxUses:        cmd.MaxUses,
		UsagePerUser:   cmd.UsagePerUser,
		StartsAt:       cmd.StartsAt,
		ExpiresAt:      cmd.ExpiresAt,
		Status:         status,
	}
	if err := definition.ValidateDefinition(); err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	coupon, err := s.couponRepo.Create(ctx, repoargs.CreateCoupon{
		Code:           definition.Code,
		DiscountType:   definition.DiscountType,
		DiscountValue:  definition.DiscountValue,
		Currency:       definition.Currency,
		MinOrderAmount: definition.MinOrderAmount,
		MaxUses:        definition.MaxUses,
		UsagePerUser:   definition.UsagePerUser,
		StartsAt:       definition.StartsAt,
		ExpiresAt:      definition.ExpiresAt,
		Status:         definition.Status,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, fmt.Errorf("create coupon: %w: code %s is taken: %w", domain.ErrConflict, definition.Code, err)
		}
		return nil, serviceErr("create coupon", err)
	}

	s.record(ctx, AuditRecord{
		ActorID:     cmd.ActorID,
		Action:      "coupon.created",
		TargetType:  domain.AggregateCoupon,
		TargetID:    coupon.ID,
		Description: fmt.Sprintf("%s: %s %s", coupon.Code, coupon.DiscountType, coupon.DiscountValue.String()),
	})
	return coupon, nil
}

type CouponCheck struct {
	Code        string
	UserID      int64
	OrderAmount decimal.Decimal
	// OrderReference identifies the order a redemption is for. Only used by Redeem.
	OrderReference string
}

type CouponQuote struct {
	Coupon   *domain.Coupon
	Discount decimal.Decimal
	// Total is the order amount after the discount.
	Total decimal.Decimal
}

// Validate runs the redemption checks without reserving a use. The result can be stale by the time the
// order is placed, Redeem repeats the checks under a lock.
//
// Checks in order: exists and active, activity window, minimum order amount, global usage limit, per-user
// usage limit. Rejections wrap domain.ErrValidation.
func (s *CouponService) Validate(ctx context.Context, check CouponCheck) (*CouponQuote, error) {
	if err := validateCouponCheck(check); err != nil {
		return nil, fmt.Errorf("validate coupon: %w", err)
	}
	coupon, findErr := s.couponRepo.FindByCode(ctx, domain.NormalizeCouponCode(check.Code))
	if findErr != nil {
		return nil, serviceErr("validate coupon", couponNotFound(findErr))
	}
	quote, err := s.quote(ctx, s.usageRepo, coupon, check)
	if err != nil {
		return nil, serviceErr("validate coupon", err)
	}
	return quote, nil
}

// Redeem checks the coupon with its row locked and records the usage in the same transaction, so two
// redemptions of the last remaining use cannot both pass.
func (s *CouponService) Redeem(ctx context.Context, check CouponCheck) (*CouponQuote, error) {
	if err := validateCouponCheck(check); err != nil {
		return nil, fmt.Errorf("redeem coupon: %w", err)
	}

	var quote *CouponQuote
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		couponRepo, couponRepoErr := txRepo[CouponRepository](tx, repoargs.CouponRepoName)
		if couponRepoErr != nil {
			return couponRepoErr
		}
		usageRepo, usageRepoErr := txRepo[CouponUsageRepository](tx, repoargs.CouponUsageRepoName)
		if usageRepoErr != nil {
			return usageRepoErr
		}

		coupon, lockErr := couponRepo.LockByCode(c, domain.NormalizeCouponCode(check.Code))
		if lockErr != nil {
			return couponNotFound(lockErr)
		}
		q, quoteErr := s.quote(c, usageRepo, coupon, check)
		if quoteErr != nil {
			return quoteErr
		}
		if _, createErr := usageRepo.Create(c, repoargs.CreateCouponUsage{
			CouponID:       coupon.ID,
			UserID:         check.UserID,
			OrderReference: check.OrderReference,
			Discount:       q.Discount,
			UsedAt:         s.now(),
		}); createErr != nil {
			return createErr //nolint:wrapcheck
		}
		quote = q
		return nil
	})

	log := s.l.WithFields(logrus.Fields{"code": domain.NormalizeCouponCode(check.Code), "userID": check.UserID})
	if txErr != nil {
		metrics.RecordCouponRedemption(metrics.ResultFailure)
		log.WithError(txErr).Info("coupon redemption rejected")
		return nil, serviceErr("redeem coupon", txErr)
	}
	metrics.RecordCouponRedemption(metrics.ResultSuccess)
	log.WithField("discount", quote.Discount.String()).Info("coupon redeemed")
	return quote, nil
}

func (s *CouponService) quote(
	ctx context.Context,
	usageRepo CouponUsageRepository,
	coupon *domain.Coupon,
	check CouponCheck,
) (*CouponQuote, error) {
	if err := coupon.CheckWindow(check.OrderAmount, s.now()); err != nil {
		return nil, err //nolint:wrapcheck
	}
	total, totalErr := usageRepo.CountByCoupon(ctx, coupon.ID)
	if totalErr != nil {
		return nil, totalErr //nolint:wrapcheck
	}
	byUser, byUserErr := usageRepo.CountByCouponAndUser(ctx, coupon.ID, check.UserID)
	if byUserErr != nil {
		return nil, byUserErr //nolint:wrapcheck
	}
	if err := coupon.CheckUsage(total, byUser); err != nil {
		return nil, err //nolint:wrapcheck
	}
	discount := coupon.Discount(check.OrderAmount)
	return &CouponQuote{
		Coupon:   coupon,
		Discount: discount,
		Total:    check.OrderAmount.Sub(discount),
	}, nil
}

func validateCouponCheck(check CouponCheck) error {
	if strings.TrimSpace(check.Code) == "" {
		return fmt.Errorf("%w: empty coupon code", domain.ErrValidation)
	}
	if check.UserID <= 0 {
		return fmt.Errorf("%w: invalid user id %d", domain.ErrValidation, check.UserID)
	}
	if check.OrderAmount.IsNegative() || !domain.HasMoneyScale(check.OrderAmount) {
		return fmt.Errorf("%w: invalid order amount %s", domain.ErrValidation, check.OrderAmount)
	}
	return nil
}

func couponNotFound(err error) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", domain.ErrCouponNotFound, err)
	}
	return err
}
