package repoargs

import (
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateCoupon struct {
	Code           string
	DiscountType   domain.DiscountType
	DiscountValue  decimal.Decimal
	Currency       string
	MinOrderAmount decimal.Decimal
	MaxUses        *int
	UsagePerUser   *int
	StartsAt       *time.Time
	ExpiresAt      *time.Time
	Status         domain.CouponStatus
}

type CreateCouponUsage struct {
	CouponID       int64
	UserID         int64
	OrderReference string
	Discount       decimal.Decimal
	UsedAt         time.Time
}
