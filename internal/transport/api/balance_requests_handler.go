package api

import (
	"context"
	"net/http"

	"github.com/fsdevblog/groph-ledger/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BalanceRequestsHandler struct {
	svs BalanceRequestServicer
}

func NewBalanceRequestsHandler(svs BalanceRequestServicer) *BalanceRequestsHandler {
	return &BalanceRequestsHandler{
		svs: svs,
	}
}

type CreateBalanceRequestParams struct {
	Amount        decimal.Decimal `binding:"decimal_gt0"             json:"amount"`
	PaymentMethod string          `binding:"required,max_bytes=64"   json:"payment_method"`
}

// Create POST RouteGroup + BalanceRequestsRoute. The request belongs to the token's user.
func (b *BalanceRequestsHandler) Create(c *gin.Context) {
	var params CreateBalanceRequestParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	request, err := b.svs.Create(reqCtx, service.CreateBalanceRequestCommand{
		UserID:        getUserIDFromContext(c),
		Amount:        params.Amount,
		PaymentMethod: params.PaymentMethod,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBalanceRequestResponse(request))
}

type DecideParams struct {
	AdminNote string `binding:"max_bytes=1000" json:"admin_note"`
}

type DecisionResponse struct {
	Request     *BalanceRequestResponse `json:"request"`
	Transaction *TransactionResponse    `json:"transaction,omitempty"`
	Warnings    []string                `json:"warnings,omitempty"`
}

// Approve POST AdminRouteGroup + BalanceRequestApproveRoute.
func (b *BalanceRequestsHandler) Approve(c *gin.Context) {
	b.decide(c, b.svs.Approve)
}

// Reject POST AdminRouteGroup + BalanceRequestRejectRoute.
func (b *BalanceRequestsHandler) Reject(c *gin.Context) {
	b.decide(c, b.svs.Reject)
}

func (b *BalanceRequestsHandler) decide(
	c *gin.Context,
	fn func(context.Context, service.DecideBalanceRequestCommand) (*service.BalanceRequestResult, error),
) {
	requestID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var params DecideParams
	// the note is optional, an empty body is fine
	if c.Request.ContentLength != 0 && !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := fn(reqCtx, service.DecideBalanceRequestCommand{
		ActorID:   getUserIDFromContext(c),
		RequestID: requestID,
		AdminNote: params.AdminNote,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDecisionResponse(result))
}

type GatewayResultParams struct {
	UserID        int64           `binding:"required,gt=0"           json:"user_id"`
	Amount        decimal.Decimal `binding:"decimal_gt0"             json:"amount"`
	Approved      bool            `json:"approved"`
	Reference     string          `binding:"required,max_bytes=255"  json:"reference"`
	PaymentMethod string          `binding:"required,max_bytes=64"   json:"payment_method"`
	Note          string          `binding:"max_bytes=1000"          json:"note"`
}

// GatewayResult POST AdminRouteGroup + GatewayResultsRoute.
func (b *BalanceRequestsHandler) GatewayResult(c *gin.Context) {
	var params GatewayResultParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := b.svs.ApplyGatewayResult(reqCtx, service.GatewayResultCommand{
		UserID:        params.UserID,
		Amount:        params.Amount,
		Approved:      params.Approved,
		Reference:     params.Reference,
		PaymentMethod: params.PaymentMethod,
		Note:          params.Note,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDecisionResponse(result))
}

func newDecisionResponse(result *service.BalanceRequestResult) DecisionResponse {
	return DecisionResponse{
		Request:     newBalanceRequestResponse(result.Request),
		Transaction: newTransactionResponse(result.Transaction),
		Warnings:    warningsText(result.Warnings),
	}
}
