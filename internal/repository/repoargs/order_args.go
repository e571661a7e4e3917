package repoargs

import (
	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateOrder struct {
	Kind              domain.OrderKind
	UserID            int64
	Amount            decimal.Decimal
	Status            domain.OrderStatusType
	ExternalReference string
	Integration       string
	SKU               string
	Quantity          int
}

type OrderStatusUpdate struct {
	Kind      domain.OrderKind
	ID        int64
	Status    domain.OrderStatusType
	AdminNote string
}
