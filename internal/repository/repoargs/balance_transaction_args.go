package repoargs

import (
	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type BalanceTransactionCreate struct {
	UserID        int64
	Direction     domain.DirectionType
	Amount        decimal.Decimal
	Description   string
	ReferenceType string
	ReferenceID   int64
}
