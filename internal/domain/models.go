package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Email     string
	Username  string
	Role      UserRole
	Status    UserStatus
	Balance   decimal.Decimal
}

type BalanceTransaction struct {
	ID            int64
	CreatedAt     time.Time
	UserID        int64
	Amount        decimal.Decimal
	Direction     DirectionType
	Description   string
	ReferenceType string
	ReferenceID   int64
}

// Signed returns the amount with a sign, negative for debits.
func (t BalanceTransaction) Signed() decimal.Decimal {
	if t.Direction == DirectionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Order is either a package order or a product order, distinguished by Kind.
type Order struct {
	ID                int64
	Kind              OrderKind
	CreatedAt         time.Time
	UpdatedAt         time.Time
	UserID            int64
	Amount            decimal.Decimal
	Status            OrderStatusType
	AdminNote         string
	ExternalReference string
	Integration       string
	SKU               string
	Quantity          int
	// FulfilledAt is the fulfillment marker. It is independent of Status.
	FulfilledAt *time.Time
}

func (o *Order) Fulfilled() bool {
	return o.FulfilledAt != nil
}

type BalanceRequest struct {
	ID                int64
	CreatedAt         time.Time
	UserID            int64
	Amount            decimal.Decimal
	PaymentMethod     string
	Status            BalanceRequestStatus
	ProcessedBy       *int64
	ProcessedAt       *time.Time
	AdminNote         string
	ExternalReference *string
}

type Coupon struct {
	ID             int64
	CreatedAt      time.Time
	Code           string
	DiscountType   DiscountType
	DiscountValue  decimal.Decimal
	Currency       string
	MinOrderAmount decimal.Decimal
	MaxUses        *int
	UsagePerUser   *int
	StartsAt       *time.Time
	ExpiresAt      *time.Time
	Status         CouponStatus
}

type CouponUsage struct {
	ID             int64
	CouponID       int64
	UserID         int64
	OrderReference string
	Discount       decimal.Decimal
	UsedAt         time.Time
}

// ServiceAccount is what a completed package order provisions for the customer.
type ServiceAccount struct {
	ID           int64
	CreatedAt    time.Time
	UserID       int64
	OrderID      int64
	Login        string
	PasswordHash string
}

type OutboxEvent struct {
	ID            uuid.UUID
	CreatedAt     time.Time
	Channel       OutboxChannel
	EventType     string
	AggregateType string
	AggregateID   int64
	Integration   string
	Payload       json.RawMessage
	Status        OutboxStatus
	Attempts      int
	NextAttemptAt time.Time
	LockedUntil   *time.Time
	LastError     string
	DeliveredAt   *time.Time
}

type AuditEntry struct {
	ID          int64
	CreatedAt   time.Time
	ActorID     int64
	Action      string
	TargetType  string
	TargetID    int64
	Description string
}
