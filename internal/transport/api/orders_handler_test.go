package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func fakeOrder(kind domain.OrderKind, status domain.OrderStatusType) *domain.Order {
	now := time.Now().UTC()
	return &domain.Order{
		ID:        int64(gofakeit.Number(1, 1_000_000)),
		Kind:      kind,
		UserID:    customerID,
		Amount:    decimal.RequireFromString("30.00"),
		Status:    status,
		Quantity:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *HandlersTestSuite) TestShowOrder() {
	order := fakeOrder(domain.OrderKindProduct, domain.OrderStatusPaid)
	order.ID = 15
	s.orders.EXPECT().Get(gomock.Any(), domain.OrderKindProduct, int64(15)).Return(order, nil)
	s.orders.EXPECT().Get(gomock.Any(), domain.OrderKindPackage, int64(16)).
		Return(nil, domain.ErrRecordNotFound)

	res := s.request(http.MethodGet, "/api/admin/orders/product/15", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	var body OrderResponse
	s.decode(res, &body)
	s.Equal(int64(15), body.ID)
	s.Equal(domain.OrderStatusPaid, body.Status)
	s.True(body.Amount.Equal(order.Amount))

	cases := []struct {
		url        string
		wantStatus int
	}{
		{url: "/api/admin/orders/package/16", wantStatus: http.StatusNotFound},
		{url: "/api/admin/orders/gift/15", wantStatus: http.StatusNotFound},
		{url: "/api/admin/orders/product/abc", wantStatus: http.StatusNotFound},
		{url: "/api/admin/orders/product/-1", wantStatus: http.StatusNotFound},
	}
	for _, tt := range cases {
		res = s.request(http.MethodGet, tt.url, s.adminToken, nil)
		s.Equal(tt.wantStatus, res.StatusCode, tt.url)
		_ = res.Body.Close()
	}
}

func (s *HandlersTestSuite) TestTransition() {
	order := fakeOrder(domain.OrderKindPackage, domain.OrderStatusPaid)
	warning := domain.NewNotificationError(uuid.New(), domain.OutboxChannelWebhook, errors.New("503"))

	s.orders.EXPECT().Transition(gomock.Any(), service.TransitionCommand{
		ActorID:        adminID,
		Kind:           domain.OrderKindPackage,
		OrderID:        order.ID,
		TargetStatus:   domain.OrderStatusPaid,
		AdminNote:      "paid by card",
		ExpectedStatus: domain.OrderStatusPending,
	}).Return(&service.TransitionResult{
		Order:          order,
		PreviousStatus: domain.OrderStatusPending,
		Delta:          decimal.RequireFromString("-30"),
		Transaction: &domain.BalanceTransaction{
			ID:        1,
			UserID:    customerID,
			Amount:    decimal.RequireFromString("30"),
			Direction: domain.DirectionDebit,
		},
		Warnings: []error{warning},
	}, nil)

	res := s.request(http.MethodPost, "/api/admin/orders/package/"+itoa(order.ID)+"/status", s.adminToken, gin.H{
		"status":          "paid",
		"expected_status": "pending",
		"admin_note":      "paid by card",
	})
	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body TransitionResponse
	s.decode(res, &body)
	s.Equal(domain.OrderStatusPending, body.PreviousStatus)
	s.True(body.Delta.Equal(decimal.NewFromInt(-30)))
	s.Require().NotNil(body.Transaction)
	s.Equal(domain.DirectionDebit, body.Transaction.Direction)
	s.Equal([]string{warning.Error()}, body.Warnings)
	s.Nil(body.Fulfillment)
}

func (s *HandlersTestSuite) TestTransitionCompletesWithFulfillment() {
	order := fakeOrder(domain.OrderKindPackage, domain.OrderStatusCompleted)
	s.orders.EXPECT().Transition(gomock.Any(), gomock.Any()).Return(&service.TransitionResult{
		Order:          order,
		PreviousStatus: domain.OrderStatusProcessing,
		Delta:          decimal.Zero,
		Fulfillment: &service.FulfillmentResult{
			Order: order,
			Account: &domain.ServiceAccount{
				Login:        "pkg-user-1",
				PasswordHash: "$2a$10$hash",
			},
		},
	}, nil)

	res := s.request(http.MethodPost, "/api/admin/orders/package/"+itoa(order.ID)+"/status", s.adminToken,
		gin.H{"status": "completed", "expected_status": "processing"})
	s.Require().Equal(http.StatusOK, res.StatusCode)

	var raw map[string]any
	s.decode(res, &raw)
	fulfillment, ok := raw["fulfillment"].(map[string]any)
	s.Require().True(ok)
	s.Equal("pkg-user-1", fulfillment["account_login"])
	s.NotContains(fulfillment, "password")
	s.NotContains(raw, "transaction")
	s.NotContains(raw, "warnings")
}

func (s *HandlersTestSuite) TestTransitionErrors() {
	cases := []struct {
		name       string
		body       any
		svcErr     error
		wantStatus int
	}{
		{name: "unknown status", body: gin.H{"status": "shipped", "expected_status": "pending"},
			wantStatus: http.StatusUnprocessableEntity},
		{name: "missing status", body: gin.H{"expected_status": "pending"}, wantStatus: http.StatusUnprocessableEntity},
		{name: "missing expected status", body: gin.H{"status": "paid"}, wantStatus: http.StatusUnprocessableEntity},
		{name: "unknown expected status", body: gin.H{"status": "paid", "expected_status": "new"},
			wantStatus: http.StatusUnprocessableEntity},
		{name: "note too long",
			body:       gin.H{"status": "paid", "expected_status": "pending", "admin_note": gofakeit.LetterN(1001)},
			wantStatus: http.StatusUnprocessableEntity},
		{name: "malformed body", body: "paid", wantStatus: http.StatusBadRequest},
		{name: "insufficient funds", body: gin.H{"status": "paid", "expected_status": "pending"},
			svcErr: domain.ErrInsufficientFunds, wantStatus: http.StatusPaymentRequired},
		{name: "stale expected status", body: gin.H{"status": "paid", "expected_status": "pending"},
			svcErr: domain.ErrConflict, wantStatus: http.StatusConflict},
		{name: "forbidden move", body: gin.H{"status": "pending", "expected_status": "paid"}, svcErr: domain.ErrValidation,
			wantStatus: http.StatusUnprocessableEntity},
	}
	for _, tt := range cases {
		if tt.svcErr != nil {
			s.orders.EXPECT().Transition(gomock.Any(), gomock.Any()).Return(nil, tt.svcErr)
		}
		res := s.request(http.MethodPost, "/api/admin/orders/package/1/status", s.adminToken, tt.body)
		s.Equal(tt.wantStatus, res.StatusCode, tt.name)
		_ = res.Body.Close()
	}
}

func (s *HandlersTestSuite) TestFulfill() {
	order := fakeOrder(domain.OrderKindProduct, domain.OrderStatusCompleted)
	s.fulfillment.EXPECT().Fulfill(gomock.Any(), service.FulfillCommand{
		ActorID: adminID,
		Kind:    domain.OrderKindProduct,
		OrderID: order.ID,
	}).Return(&service.FulfillmentResult{Order: order, AlreadyFulfilled: true}, nil)

	res := s.request(http.MethodPost, "/api/admin/orders/product/"+itoa(order.ID)+"/fulfill", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body FulfillResponse
	s.decode(res, &body)
	s.True(body.AlreadyFulfilled)
	s.Empty(body.AccountLogin)
	s.Equal(order.ID, body.Order.ID)

	s.fulfillment.EXPECT().Fulfill(gomock.Any(), gomock.Any()).
		Return(nil, errors.Join(domain.ErrValidation, errors.New("order is not completed")))
	res = s.request(http.MethodPost, "/api/admin/orders/product/3/fulfill", s.adminToken, nil)
	s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
	_ = res.Body.Close()
}
