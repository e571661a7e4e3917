package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const couponColumns = `id, created_at, code, discount_type, discount_value, currency, min_order_amount,
	max_uses, usage_per_user, starts_at, expires_at, status`

// CouponRepository looks coupons up by upper(code), so codes are case-insensitive.
type CouponRepository struct {
	conn uow.DBTX
}

func NewCouponRepository(conn uow.DBTX) *CouponRepository {
	return &CouponRepository{conn: conn}
}

func (r *CouponRepository) Create(ctx context.Context, args repoargs.CreateCoupon) (*domain.Coupon, error) {
	row := r.conn.QueryRow(ctx,
		`INSERT INTO coupons (code, discount_type, discount_value, currency, min_order_amount, max_uses,
			usage_per_user, starts_at, expires_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+couponColumns,
		domain.NormalizeCouponCode(args.Code), args.DiscountType, args.DiscountValue, args.Currency,
		args.MinOrderAmount, args.MaxUses, args.UsagePerUser, args.StartsAt, args.ExpiresAt, args.Status,
	)
	c, err := scanCoupon(row)
	if err != nil {
		return nil, convertErr(err, "create coupon %s", args.Code)
	}
	return c, nil
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE upper(code) = $1`, domain.NormalizeCouponCode(code))
	c, err := scanCoupon(row)
	if err != nil {
		return nil, convertErr(err, "find coupon %s", code)
	}
	return c, nil
}

// LockByCode locks the coupon row, which serializes concurrent redemptions of the same coupon.
func (r *CouponRepository) LockByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE upper(code) = $1 FOR UPDATE`, domain.NormalizeCouponCode(code))
	c, err := scanCoupon(row)
	if err != nil {
		return nil, convertErr(err, "lock coupon %s", code)
	}
	return c, nil
}

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	if err := row.Scan(
		&c.ID, &c.CreatedAt, &c.Code, &c.DiscountType, &c.DiscountValue, &c.Currency, &c.MinOrderAmount,
		&c.MaxUses, &c.UsagePerUser, &c.StartsAt, &c.ExpiresAt, &c.Status,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &c, nil
}

type CouponUsageRepository struct {
	conn uow.DBTX
}

func NewCouponUsageRepository(conn uow.DBTX) *CouponUsageRepository {
	return &CouponUsageRepository{conn: conn}
}

func (r *CouponUsageRepository) Create(
	ctx context.Context,
	args repoargs.CreateCouponUsage,
) (*domain.CouponUsage, error) {
	var u domain.CouponUsage
	err := r.conn.QueryRow(ctx,
		`INSERT INTO coupon_usages (coupon_id, user_id, order_reference, discount, used_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, coupon_id, user_id, order_reference, discount, used_at`,
		args.CouponID, args.UserID, args.OrderReference, args.Discount, args.UsedAt,
	).Scan(&u.ID, &u.CouponID, &u.UserID, &u.OrderReference, &u.Discount, &u.UsedAt)
	if err != nil {
		return nil, convertErr(err, "create usage of coupon %d", args.CouponID)
	}
	return &u, nil
}

func (r *CouponUsageRepository) CountByCoupon(ctx context.Context, couponID int64) (int, error) {
	var n int
	if err := r.conn.QueryRow(ctx,
		`SELECT count(*) FROM coupon_usages WHERE coupon_id = $1`, couponID,
	).Scan(&n); err != nil {
		return 0, convertErr(err, "count usages of coupon %d", couponID)
	}
	return n, nil
}

func (r *CouponUsageRepository) CountByCouponAndUser(ctx context.Context, couponID, userID int64) (int, error) {
	var n int
	if err := r.conn.QueryRow(ctx,
		`SELECT count(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2`, couponID, userID,
	).Scan(&n); err != nil {
		return 0, convertErr(err, "count usages of coupon %d by user %d", couponID, userID)
	}
	return n, nil
}
