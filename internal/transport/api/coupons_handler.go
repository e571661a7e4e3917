package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CouponsHandler struct {
	svs CouponServicer
}

func NewCouponsHandler(svs CouponServicer) *CouponsHandler {
	return &CouponsHandler{
		svs: svs,
	}
}

type CreateCouponParams struct {
	Code           string              `binding:"required,max_bytes=64"       json:"code"`
	DiscountType   domain.DiscountType `binding:"required,oneof=fixed percent" json:"discount_type"`
	DiscountValue  decimal.Decimal     `binding:"decimal_gt0"                 json:"discount_value"`
	Currency       string              `binding:"max_bytes=3"                 json:"currency"`
	MinOrderAmount decimal.Decimal     `binding:"decimal_gte0"                json:"min_order_amount"`
	MaxUses        *int                `binding:"omitempty,gt=0"              json:"max_uses"`
	UsagePerUser   *int                `binding:"omitempty,gt=0"              json:"usage_per_user"`
	StartsAt       *time.Time          `json:"starts_at"`
	ExpiresAt      *time.Time          `json:"expires_at"`
	Inactive       bool                `json:"inactive"`
}

// Create POST AdminRouteGroup + CouponsRoute.
func (h *CouponsHandler) Create(c *gin.Context) {
	var params CreateCouponParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	coupon, err := h.svs.Create(reqCtx, service.CreateCouponCommand{
		ActorID:        getUserIDFromContext(c),
		Code:           params.Code,
		DiscountType:   params.DiscountType,
		DiscountValue:  params.DiscountValue,
		Currency:       params.Currency,
		MinOrderAmount: params.MinOrderAmount,
		MaxUses:        params.MaxUses,
		UsagePerUser:   params.UsagePerUser,
		StartsAt:       params.StartsAt,
		ExpiresAt:      params.ExpiresAt,
		Inactive:       params.Inactive,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCouponResponse(coupon))
}

type CouponCheckParams struct {
	Code           string          `binding:"required,max_bytes=64"  json:"code"`
	UserID         int64           `binding:"required,gt=0"          json:"user_id"`
	OrderAmount    decimal.Decimal `binding:"decimal_gt0"            json:"order_amount"`
	OrderReference string          `binding:"max_bytes=255"          json:"order_reference"`
}

type CouponQuoteResponse struct {
	Coupon   *CouponResponse `json:"coupon"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Validate POST AdminRouteGroup + CouponsValidateRoute. Quotes the discount without recording a use.
func (h *CouponsHandler) Validate(c *gin.Context) {
	h.check(c, h.svs.Validate)
}

// Redeem POST AdminRouteGroup + CouponsRedeemRoute.
func (h *CouponsHandler) Redeem(c *gin.Context) {
	h.check(c, h.svs.Redeem)
}

func (h *CouponsHandler) check(
	c *gin.Context,
	fn func(context.Context, service.CouponCheck) (*service.CouponQuote, error),
) {
	var params CouponCheckParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	quote, err := fn(reqCtx, service.CouponCheck{
		Code:           params.Code,
		UserID:         params.UserID,
		OrderAmount:    params.OrderAmount,
		OrderReference: params.OrderReference,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, CouponQuoteResponse{
		Coupon:   newCouponResponse(quote.Coupon),
		Discount: quote.Discount,
		Total:    quote.Total,
	})
}
