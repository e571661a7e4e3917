package api

import (
	"context"
	"net/http"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BalanceHandler struct {
	svs LedgerServicer
}

func NewBalanceHandler(svs LedgerServicer) *BalanceHandler {
	return &BalanceHandler{
		svs: svs,
	}
}

type BalanceResponse struct {
	UserID     int64           `json:"user_id"`
	Current    decimal.Decimal `json:"current"`
	Credited   decimal.Decimal `json:"credited"`
	Debited    decimal.Decimal `json:"debited"`
	Consistent bool            `json:"consistent"`
}

// Index GET RouteGroup + BalanceRoute. Balance of the current user.
func (b *BalanceHandler) Index(c *gin.Context) {
	b.renderBalance(c, getUserIDFromContext(c))
}

// Show GET AdminRouteGroup + UserBalanceRoute.
func (b *BalanceHandler) Show(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	b.renderBalance(c, userID)
}

func (b *BalanceHandler) renderBalance(c *gin.Context, userID int64) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := b.svs.GetUserBalance(reqCtx, userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, &BalanceResponse{
		UserID:     balance.UserID,
		Current:    balance.Cached,
		Credited:   balance.Credit,
		Debited:    balance.Debit,
		Consistent: balance.Consistent(),
	})
}

// Transactions GET AdminRouteGroup + UserTransactionsRoute. Newest first.
func (b *BalanceHandler) Transactions(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := b.svs.GetTransactions(reqCtx, userID, limit)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := make([]*TransactionResponse, len(transactions))
	for i := range transactions {
		response[i] = newTransactionResponse(&transactions[i])
	}
	c.JSON(http.StatusOK, response)
}

type AdjustParams struct {
	Direction   domain.DirectionType `binding:"required,oneof=credit debit"         json:"direction"`
	Amount      decimal.Decimal      `binding:"decimal_gt0"                         json:"amount"`
	Description string               `binding:"required,max_bytes=255"              json:"description"`
}

type AdjustResponse struct {
	UserID      int64                `json:"user_id"`
	Balance     decimal.Decimal      `json:"balance"`
	Policy      domain.DebitPolicy   `json:"policy"`
	Requested   decimal.Decimal      `json:"requested"`
	Applied     decimal.Decimal      `json:"applied"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}

// Adjust POST AdminRouteGroup + UserAdjustmentsRoute.
func (b *BalanceHandler) Adjust(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var params AdjustParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := b.svs.AdjustBalance(reqCtx, service.AdjustBalanceCommand{
		ActorID:     getUserIDFromContext(c),
		UserID:      userID,
		Direction:   params.Direction,
		Amount:      params.Amount,
		Description: params.Description,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, AdjustResponse{
		UserID:      result.User.ID,
		Balance:     result.User.Balance,
		Policy:      result.Policy,
		Requested:   result.Requested,
		Applied:     result.Applied,
		Transaction: newTransactionResponse(result.Transaction),
	})
}
