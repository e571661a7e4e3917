package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

func (s *HandlersTestSuite) TestCreateCoupon() {
	maxUses := 100
	expires := time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)

	s.coupons.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd service.CreateCouponCommand) (*domain.Coupon, error) {
			s.Equal(adminID, cmd.ActorID)
			s.Equal("SUMMER", cmd.Code)
			s.Equal(domain.DiscountPercent, cmd.DiscountType)
			s.True(cmd.DiscountValue.Equal(decimal.NewFromInt(15)))
			s.Require().NotNil(cmd.MaxUses)
			s.Equal(maxUses, *cmd.MaxUses)
			s.Nil(cmd.UsagePerUser)
			s.Require().NotNil(cmd.ExpiresAt)
			s.True(cmd.ExpiresAt.Equal(expires))
			return &domain.Coupon{
				ID:            1,
				Code:          cmd.Code,
				DiscountType:  cmd.DiscountType,
				DiscountValue: cmd.DiscountValue,
				MaxUses:       cmd.MaxUses,
				ExpiresAt:     cmd.ExpiresAt,
				Status:        domain.CouponStatusActive,
			}, nil
		})

	res := s.request(http.MethodPost, "/api/admin/coupons", s.adminToken, gin.H{
		"code":           "SUMMER",
		"discount_type":  "percent",
		"discount_value": "15",
		"max_uses":       maxUses,
		"expires_at":     expires.Format(time.RFC3339),
	})
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	var body CouponResponse
	s.decode(res, &body)
	s.Equal("SUMMER", body.Code)
	s.Equal(domain.CouponStatusActive, body.Status)
}

func (s *HandlersTestSuite) TestCreateCouponValidation() {
	cases := []struct {
		name string
		body gin.H
	}{
		{name: "unknown type", body: gin.H{"code": "X", "discount_type": "bogo", "discount_value": "1"}},
		{name: "zero value", body: gin.H{"code": "X", "discount_type": "fixed", "discount_value": "0"}},
		{name: "negative minimum", body: gin.H{"code": "X", "discount_type": "fixed", "discount_value": "1",
			"min_order_amount": "-1"}},
		{name: "minimum with three places", body: gin.H{"code": "X", "discount_type": "fixed", "discount_value": "1",
			"min_order_amount": "0.005"}},
		{name: "zero max uses", body: gin.H{"code": "X", "discount_type": "fixed", "discount_value": "1",
			"max_uses": 0}},
	}
	for _, tt := range cases {
		res := s.request(http.MethodPost, "/api/admin/coupons", s.adminToken, tt.body)
		s.Equal(http.StatusUnprocessableEntity, res.StatusCode, tt.name)
		_ = res.Body.Close()
	}

	s.coupons.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, domain.ErrConflict)
	res := s.request(http.MethodPost, "/api/admin/coupons", s.adminToken,
		gin.H{"code": "TAKEN", "discount_type": "fixed", "discount_value": "5"})
	s.Equal(http.StatusConflict, res.StatusCode)
	_ = res.Body.Close()
}

func (s *HandlersTestSuite) TestCouponQuotes() {
	coupon := &domain.Coupon{ID: 1, Code: "TEN", DiscountType: domain.DiscountFixed,
		DiscountValue: decimal.NewFromInt(10), Status: domain.CouponStatusActive}
	check := service.CouponCheck{
		Code:           "TEN",
		UserID:         customerID,
		OrderAmount:    decimal.RequireFromString("42"),
		OrderReference: "order-1",
	}
	quote := &service.CouponQuote{Coupon: coupon, Discount: decimal.NewFromInt(10), Total: decimal.NewFromInt(32)}

	s.coupons.EXPECT().Validate(gomock.Any(), check).Return(quote, nil)
	s.coupons.EXPECT().Redeem(gomock.Any(), check).Return(quote, nil)

	payload := gin.H{"code": "TEN", "user_id": customerID, "order_amount": "42", "order_reference": "order-1"}
	for _, url := range []string{"/api/admin/coupons/validate", "/api/admin/coupons/redeem"} {
		res := s.request(http.MethodPost, url, s.adminToken, payload)
		s.Require().Equal(http.StatusOK, res.StatusCode, url)

		var body CouponQuoteResponse
		s.decode(res, &body)
		s.True(body.Discount.Equal(decimal.NewFromInt(10)), url)
		s.True(body.Total.Equal(decimal.NewFromInt(32)), url)
		s.Equal("TEN", body.Coupon.Code)
	}
}

func (s *HandlersTestSuite) TestCouponRejections() {
	rejections := []error{
		domain.ErrCouponNotFound,
		domain.ErrCouponExpired,
		domain.ErrCouponExhausted,
		fmt.Errorf("redeem: %w", domain.ErrCouponUserLimit),
	}
	for _, rejection := range rejections {
		s.coupons.EXPECT().Redeem(gomock.Any(), gomock.Any()).Return(nil, rejection)

		res := s.request(http.MethodPost, "/api/admin/coupons/redeem", s.adminToken,
			gin.H{"code": "TEN", "user_id": customerID, "order_amount": "42"})
		s.Equal(http.StatusUnprocessableEntity, res.StatusCode, rejection.Error())
		s.Equal(rejection.Error(), s.errorText(res))
	}
}
