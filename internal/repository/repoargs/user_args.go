package repoargs

import (
	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateUser struct {
	Email    string
	Username string
	Role     domain.UserRole
	Balance  decimal.Decimal
}

// BalanceAggregation is the ledger side of a user balance.
type BalanceAggregation struct {
	CreditAmount decimal.Decimal
	DebitAmount  decimal.Decimal
}
