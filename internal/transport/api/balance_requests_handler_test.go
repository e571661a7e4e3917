package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/service"
	"github.com/fsdevblog/groph-ledger/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *HandlersTestSuite) TestCreateBalanceRequest() {
	method := gofakeit.RandomString([]string{"card", "bank_transfer", "crypto"})
	s.requests.EXPECT().Create(gomock.Any(), service.CreateBalanceRequestCommand{
		UserID:        customerID,
		Amount:        decimal.RequireFromString("20.00"),
		PaymentMethod: method,
	}).Return(&domain.BalanceRequest{
		ID:            5,
		UserID:        customerID,
		Amount:        decimal.RequireFromString("20.00"),
		PaymentMethod: method,
		Status:        domain.BalanceRequestPending,
		CreatedAt:     time.Now().UTC(),
	}, nil)

	res := s.request(http.MethodPost, "/api/balance-requests", s.customerToken,
		gin.H{"amount": "20.00", "payment_method": method})
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	var body BalanceRequestResponse
	s.decode(res, &body)
	s.Equal(int64(5), body.ID)
	s.Equal(domain.BalanceRequestPending, body.Status)
	s.Nil(body.ProcessedBy)

	res = s.request(http.MethodPost, "/api/balance-requests", s.customerToken,
		gin.H{"amount": "0", "payment_method": method})
	s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
	_ = res.Body.Close()

	// 20 runes, 80 bytes
	res = s.request(http.MethodPost, "/api/balance-requests", s.customerToken,
		gin.H{"amount": "5", "payment_method": testutils.GenerateOverBytesUnderRunes(20)})
	s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
	_ = res.Body.Close()
}

func (s *HandlersTestSuite) TestApproveBalanceRequest() {
	processedAt := time.Now().UTC()
	actor := adminID
	warning := domain.NewNotificationError(uuid.New(), domain.OutboxChannelEmail, errors.New("smtp down"))

	s.requests.EXPECT().Approve(gomock.Any(), service.DecideBalanceRequestCommand{
		ActorID:   adminID,
		RequestID: 5,
	}).Return(&service.BalanceRequestResult{
		Request: &domain.BalanceRequest{
			ID:          5,
			UserID:      customerID,
			Amount:      decimal.NewFromInt(20),
			Status:      domain.BalanceRequestApproved,
			ProcessedBy: &actor,
			ProcessedAt: &processedAt,
		},
		Transaction: &domain.BalanceTransaction{
			ID: 9, UserID: customerID, Amount: decimal.NewFromInt(20), Direction: domain.DirectionCredit,
		},
		Warnings: []error{warning},
	}, nil)

	// no body at all
	res := s.request(http.MethodPost, "/api/admin/balance-requests/5/approve", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body DecisionResponse
	s.decode(res, &body)
	s.Equal(domain.BalanceRequestApproved, body.Request.Status)
	s.Require().NotNil(body.Request.ProcessedBy)
	s.Equal(adminID, *body.Request.ProcessedBy)
	s.Require().NotNil(body.Transaction)
	s.True(body.Transaction.Amount.Equal(decimal.NewFromInt(20)))
	s.Equal([]string{warning.Error()}, body.Warnings)
}

func (s *HandlersTestSuite) TestDecideAlreadyDecided() {
	s.requests.EXPECT().Approve(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("approve: %w", domain.ErrNotPending))
	s.requests.EXPECT().Reject(gomock.Any(), service.DecideBalanceRequestCommand{
		ActorID:   adminID,
		RequestID: 6,
		AdminNote: "duplicate",
	}).Return(nil, domain.ErrNotPending)

	res := s.request(http.MethodPost, "/api/admin/balance-requests/6/approve", s.adminToken, nil)
	s.Equal(http.StatusConflict, res.StatusCode)
	_ = res.Body.Close()

	res = s.request(http.MethodPost, "/api/admin/balance-requests/6/reject", s.adminToken,
		gin.H{"admin_note": "duplicate"})
	s.Equal(http.StatusConflict, res.StatusCode)
	_ = res.Body.Close()
}

func (s *HandlersTestSuite) TestGatewayResult() {
	reference := gofakeit.UUID()
	s.requests.EXPECT().ApplyGatewayResult(gomock.Any(), service.GatewayResultCommand{
		UserID:        customerID,
		Amount:        decimal.RequireFromString("15.5"),
		Approved:      true,
		Reference:     reference,
		PaymentMethod: "card",
	}).Return(&service.BalanceRequestResult{
		Request: &domain.BalanceRequest{
			ID: 11, UserID: customerID, Amount: decimal.RequireFromString("15.5"),
			Status: domain.BalanceRequestApproved, ExternalReference: &reference,
		},
		Transaction: &domain.BalanceTransaction{ID: 12, Direction: domain.DirectionCredit},
	}, nil)
	s.requests.EXPECT().ApplyGatewayResult(gomock.Any(), gomock.Any()).Return(nil, domain.ErrConflict)

	payload := gin.H{
		"user_id":        customerID,
		"amount":         "15.5",
		"approved":       true,
		"reference":      reference,
		"payment_method": "card",
	}
	res := s.request(http.MethodPost, "/api/admin/gateway-results", s.adminToken, payload)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	var body DecisionResponse
	s.decode(res, &body)
	s.Require().NotNil(body.Request.Reference)
	s.Equal(reference, *body.Request.Reference)

	res = s.request(http.MethodPost, "/api/admin/gateway-results", s.adminToken, payload)
	s.Equal(http.StatusConflict, res.StatusCode)
	_ = res.Body.Close()

	res = s.request(http.MethodPost, "/api/admin/gateway-results", s.adminToken,
		gin.H{"user_id": customerID, "amount": "15.5", "payment_method": "card"})
	s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
	_ = res.Body.Close()
}
