package api

import (
	"net/http"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

func (s *HandlersTestSuite) TestOwnBalance() {
	s.ledger.EXPECT().GetUserBalance(gomock.Any(), customerID).Return(&service.UserBalance{
		UserID: customerID,
		Cached: decimal.RequireFromString("70.50"),
		Credit: decimal.RequireFromString("100.50"),
		Debit:  decimal.RequireFromString("30"),
	}, nil)

	res := s.request(http.MethodGet, "/api/user/balance", s.customerToken, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body BalanceResponse
	s.decode(res, &body)
	s.Equal(customerID, body.UserID)
	s.True(body.Current.Equal(decimal.RequireFromString("70.5")))
	s.True(body.Credited.Equal(decimal.RequireFromString("100.5")))
	s.True(body.Debited.Equal(decimal.NewFromInt(30)))
	s.True(body.Consistent)
}

func (s *HandlersTestSuite) TestAdminBalanceReportsDrift() {
	s.ledger.EXPECT().GetUserBalance(gomock.Any(), int64(9)).Return(&service.UserBalance{
		UserID: 9,
		Cached: decimal.NewFromInt(10),
		Credit: decimal.NewFromInt(5),
		Debit:  decimal.Zero,
	}, nil)

	res := s.request(http.MethodGet, "/api/admin/users/9/balance", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body BalanceResponse
	s.decode(res, &body)
	s.False(body.Consistent)
}

func (s *HandlersTestSuite) TestTransactions() {
	now := time.Now().UTC()
	s.ledger.EXPECT().GetTransactions(gomock.Any(), customerID, uint(2)).Return([]domain.BalanceTransaction{
		{ID: 2, UserID: customerID, Amount: decimal.NewFromInt(30), Direction: domain.DirectionCredit,
			ReferenceType: "order", ReferenceID: 4, CreatedAt: now},
		{ID: 1, UserID: customerID, Amount: decimal.NewFromInt(30), Direction: domain.DirectionDebit,
			ReferenceType: "order", ReferenceID: 4, CreatedAt: now.Add(-time.Minute)},
	}, nil)

	res := s.request(http.MethodGet, "/api/admin/users/42/transactions?limit=2", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body []TransactionResponse
	s.decode(res, &body)
	s.Require().Len(body, 2)
	s.Equal(int64(2), body[0].ID)
	s.Equal(domain.DirectionCredit, body[0].Direction)
	s.Equal("order", body[1].ReferenceType)

	for _, limit := range []string{"-1", "abc", "1001"} {
		res = s.request(http.MethodGet, "/api/admin/users/42/transactions?limit="+limit, s.adminToken, nil)
		s.Equal(http.StatusUnprocessableEntity, res.StatusCode, limit)
		_ = res.Body.Close()
	}
}

func (s *HandlersTestSuite) TestAdjust() {
	s.ledger.EXPECT().AdjustBalance(gomock.Any(), service.AdjustBalanceCommand{
		ActorID:     adminID,
		UserID:      customerID,
		Direction:   domain.DirectionDebit,
		Amount:      decimal.RequireFromString("80"),
		Description: "chargeback",
	}).Return(&service.AdjustBalanceResult{
		User:      &domain.User{ID: customerID, Balance: decimal.Zero},
		Policy:    domain.ClampedDebit,
		Requested: decimal.NewFromInt(80),
		Applied:   decimal.NewFromInt(50),
		Transaction: &domain.BalanceTransaction{
			ID: 3, UserID: customerID, Amount: decimal.NewFromInt(50), Direction: domain.DirectionDebit,
		},
	}, nil)

	res := s.request(http.MethodPost, "/api/admin/users/42/adjustments", s.adminToken, gin.H{
		"direction":   "debit",
		"amount":      "80",
		"description": "chargeback",
	})
	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body AdjustResponse
	s.decode(res, &body)
	s.Equal(domain.ClampedDebit, body.Policy)
	s.True(body.Applied.Equal(decimal.NewFromInt(50)))
	s.True(body.Requested.Equal(decimal.NewFromInt(80)))
	s.True(body.Balance.IsZero())
	s.Require().NotNil(body.Transaction)
	s.True(body.Transaction.Amount.Equal(decimal.NewFromInt(50)))
}

func (s *HandlersTestSuite) TestAdjustValidation() {
	cases := []struct {
		name string
		body gin.H
	}{
		{name: "zero amount", body: gin.H{"direction": "credit", "amount": "0", "description": "x"}},
		{name: "negative amount", body: gin.H{"direction": "credit", "amount": "-5", "description": "x"}},
		{name: "unknown direction", body: gin.H{"direction": "refund", "amount": "5", "description": "x"}},
		{name: "no description", body: gin.H{"direction": "credit", "amount": "5"}},
		{name: "fraction of a cent", body: gin.H{"direction": "credit", "amount": "0.006", "description": "x"}},
	}
	for _, tt := range cases {
		res := s.request(http.MethodPost, "/api/admin/users/42/adjustments", s.adminToken, tt.body)
		s.Equal(http.StatusUnprocessableEntity, res.StatusCode, tt.name)
		_ = res.Body.Close()
	}

	s.ledger.EXPECT().AdjustBalance(gomock.Any(), gomock.Any()).Return(nil, domain.ErrInsufficientFunds)
	res := s.request(http.MethodPost, "/api/admin/users/42/adjustments", s.adminToken,
		gin.H{"direction": "debit", "amount": "500", "description": "too much"})
	s.Equal(http.StatusPaymentRequired, res.StatusCode)
	_ = res.Body.Close()
}
