package api

import (
	"fmt"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup           = "/api"
	BalanceRoute         = "/user/balance"
	BalanceRequestsRoute = "/balance-requests"
)

const (
	AdminRouteGroup            = "/admin"
	OrderRoute                 = "/orders/:kind/:id"
	OrderStatusRoute           = "/orders/:kind/:id/status"
	OrderFulfillRoute          = "/orders/:kind/:id/fulfill"
	BalanceRequestApproveRoute = "/balance-requests/:id/approve"
	BalanceRequestRejectRoute  = "/balance-requests/:id/reject"
	GatewayResultsRoute        = "/gateway-results"
	UserBalanceRoute           = "/users/:id/balance"
	UserTransactionsRoute      = "/users/:id/transactions"
	UserAdjustmentsRoute       = "/users/:id/adjustments"
	CouponsRoute               = "/coupons"
	CouponsValidateRoute       = "/coupons/validate"
	CouponsRedeemRoute         = "/coupons/redeem"
	OutboxRoute                = "/outbox"
	OutboxResendRoute          = "/outbox/:id/resend"
	AuditRoute                 = "/audit/:type/:id"
)

type RouterArgs struct {
	Logger                *logrus.Logger
	LedgerService         LedgerServicer
	OrderService          OrderServicer
	FulfillmentService    FulfillmentServicer
	BalanceRequestService BalanceRequestServicer
	CouponService         CouponServicer
	OutboxService         OutboxServicer
	AuditService          AuditServicer
	JWTSecretKey          []byte
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	ordersHandler := NewOrdersHandler(args.OrderService, args.FulfillmentService)
	balanceHandler := NewBalanceHandler(args.LedgerService)
	requestsHandler := NewBalanceRequestsHandler(args.BalanceRequestService)
	couponsHandler := NewCouponsHandler(args.CouponService)
	outboxHandler := NewOutboxHandler(args.OutboxService)
	auditHandler := NewAuditHandler(args.AuditService)

	api := r.Group(RouteGroup)
	api.Use(middlewares.AuthRequired(args.JWTSecretKey))

	api.GET(BalanceRoute, balanceHandler.Index)
	api.POST(BalanceRequestsRoute, requestsHandler.Create)

	admin := api.Group(AdminRouteGroup)
	admin.Use(middlewares.AdminRequired())

	admin.GET(OrderRoute, ordersHandler.Show)
	admin.POST(OrderStatusRoute, ordersHandler.Transition)
	admin.POST(OrderFulfillRoute, ordersHandler.Fulfill)

	admin.POST(BalanceRequestApproveRoute, requestsHandler.Approve)
	admin.POST(BalanceRequestRejectRoute, requestsHandler.Reject)
	admin.POST(GatewayResultsRoute, requestsHandler.GatewayResult)

	admin.GET(UserBalanceRoute, balanceHandler.Show)
	admin.GET(UserTransactionsRoute, balanceHandler.Transactions)
	admin.POST(UserAdjustmentsRoute, balanceHandler.Adjust)

	admin.POST(CouponsRoute, couponsHandler.Create)
	admin.POST(CouponsValidateRoute, couponsHandler.Validate)
	admin.POST(CouponsRedeemRoute, couponsHandler.Redeem)

	admin.GET(OutboxRoute, outboxHandler.Index)
	admin.POST(OutboxResendRoute, outboxHandler.Resend)

	admin.GET(AuditRoute, auditHandler.History)
	return r, nil
}
