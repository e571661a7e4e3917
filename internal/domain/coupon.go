package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var maxPercent = decimal.NewFromInt(100)

// NormalizeCouponCode makes codes comparable case-insensitively.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateDefinition checks a coupon before it is stored.
func (c *Coupon) ValidateDefinition() error {
	if NormalizeCouponCode(c.Code) == "" {
		return fmt.Errorf("%w: empty code", ErrCouponBadDefinition)
	}
	switch c.DiscountType {
	case DiscountFixed:
		if !c.DiscountValue.IsPositive() {
			return fmt.Errorf("%w: fixed discount must be positive", ErrCouponBadDefinition)
		}
	case DiscountPercent:
		if !c.DiscountValue.IsPositive() || c.DiscountValue.GreaterThan(maxPercent) {
			return fmt.Errorf("%w: percent discount must be in (0, 100]", ErrCouponBadDefinition)
		}
	default:
		return fmt.Errorf("%w: unknown discount type %q", ErrCouponBadDefinition, c.DiscountType)
	}
	if !HasMoneyScale(c.DiscountValue) || !HasMoneyScale(c.MinOrderAmount) {
		return fmt.Errorf("%w: amounts allow at most %d decimal places", ErrCouponBadDefinition, MoneyPlaces)
	}
	if c.MinOrderAmount.IsNegative() {
		return fmt.Errorf("%w: negative minimum order amount", ErrCouponBadDefinition)
	}
	if c.MaxUses != nil && *c.MaxUses <= 0 {
		return fmt.Errorf("%w: max uses must be positive", ErrCouponBadDefinition)
	}
	if c.UsagePerUser != nil && *c.UsagePerUser <= 0 {
		return fmt.Errorf("%w: usage per user must be positive", ErrCouponBadDefinition)
	}
	if c.StartsAt != nil && c.ExpiresAt != nil && !c.StartsAt.Before(*c.ExpiresAt) {
		return fmt.Errorf("%w: starts_at must be before expires_at", ErrCouponBadDefinition)
	}
	return nil
}

// CheckWindow checks status, activity window and minimum order amount. Usage counters are checked by the
// caller because they live in coupon_usages.
func (c *Coupon) CheckWindow(orderAmount decimal.Decimal, now time.Time) error {
	if c.Status != CouponStatusActive {
		return ErrCouponInactive
	}
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return ErrCouponNotStarted
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return ErrCouponExpired
	}
	if orderAmount.LessThan(c.MinOrderAmount) {
		return ErrCouponMinAmount
	}
	return nil
}

// CheckUsage compares usage counts with the coupon limits.
func (c *Coupon) CheckUsage(total, byUser int) error {
	if c.MaxUses != nil && total >= *c.MaxUses {
		return ErrCouponExhausted
	}
	if c.UsagePerUser != nil && byUser >= *c.UsagePerUser {
		return ErrCouponUserLimit
	}
	return nil
}

// Discount computes the discount for orderAmount, never more than orderAmount itself.
func (c *Coupon) Discount(orderAmount decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.DiscountType {
	case DiscountPercent:
		d = orderAmount.Mul(c.DiscountValue).Div(maxPercent).Round(2) //nolint:mnd
	default:
		d = c.DiscountValue
	}
	if d.GreaterThan(orderAmount) {
		d = orderAmount
	}
	return d
}
