package api

import (
	"context"
	"net/http"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrdersHandler struct {
	orderSvs       OrderServicer
	fulfillmentSvs FulfillmentServicer
}

func NewOrdersHandler(orderSvs OrderServicer, fulfillmentSvs FulfillmentServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs:       orderSvs,
		fulfillmentSvs: fulfillmentSvs,
	}
}

// Show GET AdminRouteGroup + OrderRoute.
func (o *OrdersHandler) Show(c *gin.Context) {
	kind, id, ok := paramOrder(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.orderSvs.Get(reqCtx, kind, id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order))
}

// TransitionParams carries the status the operator saw. A transition from any other status is a conflict,
// so two operators acting on the same order cannot both succeed.
type TransitionParams struct {
	Status         domain.OrderStatusType `binding:"required,oneof=pending paid processing completed cancelled" json:"status"`
	ExpectedStatus domain.OrderStatusType `binding:"required,oneof=pending paid processing completed cancelled" json:"expected_status"`
	AdminNote      string                 `binding:"max_bytes=1000"                                            json:"admin_note"`
}

type TransitionResponse struct {
	Order          *OrderResponse         `json:"order"`
	PreviousStatus domain.OrderStatusType `json:"previous_status"`
	Delta          decimal.Decimal        `json:"delta"`
	Transaction    *TransactionResponse   `json:"transaction,omitempty"`
	Fulfillment    *FulfillmentResponse   `json:"fulfillment,omitempty"`
	Warnings       []string               `json:"warnings,omitempty"`
}

// Transition POST AdminRouteGroup + OrderStatusRoute.
func (o *OrdersHandler) Transition(c *gin.Context) {
	kind, id, ok := paramOrder(c)
	if !ok {
		return
	}
	var params TransitionParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := o.orderSvs.Transition(reqCtx, service.TransitionCommand{
		ActorID:        getUserIDFromContext(c),
		Kind:           kind,
		OrderID:        id,
		TargetStatus:   params.Status,
		AdminNote:      params.AdminNote,
		ExpectedStatus: params.ExpectedStatus,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := TransitionResponse{
		Order:          newOrderResponse(result.Order),
		PreviousStatus: result.PreviousStatus,
		Delta:          result.Delta,
		Transaction:    newTransactionResponse(result.Transaction),
		Warnings:       warningsText(result.Warnings),
	}
	if result.Fulfillment != nil {
		response.Fulfillment = newFulfillmentResponse(result.Fulfillment)
	}
	c.JSON(http.StatusOK, response)
}

type FulfillResponse struct {
	Order *OrderResponse `json:"order"`
	FulfillmentResponse
	Warnings []string `json:"warnings,omitempty"`
}

// Fulfill POST AdminRouteGroup + OrderFulfillRoute. Retries fulfillment of a completed order.
func (o *OrdersHandler) Fulfill(c *gin.Context) {
	kind, id, ok := paramOrder(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := o.fulfillmentSvs.Fulfill(reqCtx, service.FulfillCommand{
		ActorID: getUserIDFromContext(c),
		Kind:    kind,
		OrderID: id,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, FulfillResponse{
		Order:               newOrderResponse(result.Order),
		FulfillmentResponse: *newFulfillmentResponse(result),
		Warnings:            warningsText(result.Warnings),
	})
}

func newFulfillmentResponse(r *service.FulfillmentResult) *FulfillmentResponse {
	response := FulfillmentResponse{
		AlreadyFulfilled: r.AlreadyFulfilled,
		AccountReused:    r.AccountReused,
	}
	if r.Account != nil {
		response.AccountLogin = r.Account.Login
	}
	return &response
}
