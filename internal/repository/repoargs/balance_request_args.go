package repoargs

import (
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateBalanceRequest struct {
	UserID            int64
	Amount            decimal.Decimal
	PaymentMethod     string
	ExternalReference *string
}

type FinalizeBalanceRequest struct {
	ID          int64
	Status      domain.BalanceRequestStatus
	ProcessedBy int64
	ProcessedAt time.Time
	AdminNote   string
}
