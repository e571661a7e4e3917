package api

import (
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderResponse struct {
	ID                int64                  `json:"id"`
	Kind              domain.OrderKind       `json:"kind"`
	UserID            int64                  `json:"user_id"`
	Amount            decimal.Decimal        `json:"amount"`
	Status            domain.OrderStatusType `json:"status"`
	AdminNote         string                 `json:"admin_note,omitempty"`
	ExternalReference string                 `json:"external_reference,omitempty"`
	Integration       string                 `json:"integration,omitempty"`
	SKU               string                 `json:"sku,omitempty"`
	Quantity          int                    `json:"quantity"`
	FulfilledAt       *time.Time             `json:"fulfilled_at,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

func newOrderResponse(o *domain.Order) *OrderResponse {
	if o == nil {
		return nil
	}
	return &OrderResponse{
		ID:                o.ID,
		Kind:              o.Kind,
		UserID:            o.UserID,
		Amount:            o.Amount,
		Status:            o.Status,
		AdminNote:         o.AdminNote,
		ExternalReference: o.ExternalReference,
		Integration:       o.Integration,
		SKU:               o.SKU,
		Quantity:          o.Quantity,
		FulfilledAt:       o.FulfilledAt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

type TransactionResponse struct {
	ID            int64                `json:"id"`
	UserID        int64                `json:"user_id"`
	Amount        decimal.Decimal      `json:"amount"`
	Direction     domain.DirectionType `json:"direction"`
	Description   string               `json:"description"`
	ReferenceType string               `json:"reference_type,omitempty"`
	ReferenceID   int64                `json:"reference_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func newTransactionResponse(t *domain.BalanceTransaction) *TransactionResponse {
	if t == nil {
		return nil
	}
	return &TransactionResponse{
		ID:            t.ID,
		UserID:        t.UserID,
		Amount:        t.Amount,
		Direction:     t.Direction,
		Description:   t.Description,
		ReferenceType: t.ReferenceType,
		ReferenceID:   t.ReferenceID,
		CreatedAt:     t.CreatedAt,
	}
}

// FulfillmentResponse never carries credentials, they are only sent to the customer.
type FulfillmentResponse struct {
	AlreadyFulfilled bool   `json:"already_fulfilled"`
	AccountLogin     string `json:"account_login,omitempty"`
	AccountReused    bool   `json:"account_reused"`
}

type BalanceRequestResponse struct {
	ID            int64                       `json:"id"`
	UserID        int64                       `json:"user_id"`
	Amount        decimal.Decimal             `json:"amount"`
	PaymentMethod string                      `json:"payment_method"`
	Status        domain.BalanceRequestStatus `json:"status"`
	ProcessedBy   *int64                      `json:"processed_by,omitempty"`
	ProcessedAt   *time.Time                  `json:"processed_at,omitempty"`
	AdminNote     string                      `json:"admin_note,omitempty"`
	Reference     *string                     `json:"external_reference,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
}

func newBalanceRequestResponse(r *domain.BalanceRequest) *BalanceRequestResponse {
	return &BalanceRequestResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		Status:        r.Status,
		ProcessedBy:   r.ProcessedBy,
		ProcessedAt:   r.ProcessedAt,
		AdminNote:     r.AdminNote,
		Reference:     r.ExternalReference,
		CreatedAt:     r.CreatedAt,
	}
}

type CouponResponse struct {
	ID             int64               `json:"id"`
	Code           string              `json:"code"`
	DiscountType   domain.DiscountType `json:"discount_type"`
	DiscountValue  decimal.Decimal     `json:"discount_value"`
	Currency       string              `json:"currency,omitempty"`
	MinOrderAmount decimal.Decimal     `json:"min_order_amount"`
	MaxUses        *int                `json:"max_uses,omitempty"`
	UsagePerUser   *int                `json:"usage_per_user,omitempty"`
	StartsAt       *time.Time          `json:"starts_at,omitempty"`
	ExpiresAt      *time.Time          `json:"expires_at,omitempty"`
	Status         domain.CouponStatus `json:"status"`
}

func newCouponResponse(c *domain.Coupon) *CouponResponse {
	return &CouponResponse{
		ID:             c.ID,
		Code:           c.Code,
		DiscountType:   c.DiscountType,
		DiscountValue:  c.DiscountValue,
		Currency:       c.Currency,
		MinOrderAmount: c.MinOrderAmount,
		MaxUses:        c.MaxUses,
		UsagePerUser:   c.UsagePerUser,
		StartsAt:       c.StartsAt,
		ExpiresAt:      c.ExpiresAt,
		Status:         c.Status,
	}
}

type OutboxEventResponse struct {
	ID            uuid.UUID            `json:"id"`
	Channel       domain.OutboxChannel `json:"channel"`
	EventType     string               `json:"event_type"`
	AggregateType string               `json:"aggregate_type"`
	AggregateID   int64                `json:"aggregate_id"`
	Integration   string               `json:"integration,omitempty"`
	Status        domain.OutboxStatus  `json:"status"`
	Attempts      int                  `json:"attempts"`
	NextAttemptAt time.Time            `json:"next_attempt_at"`
	LastError     string               `json:"last_error,omitempty"`
	DeliveredAt   *time.Time           `json:"delivered_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// newOutboxEventResponse leaves the payload out, email payloads may contain credentials.
func newOutboxEventResponse(e *domain.OutboxEvent) OutboxEventResponse {
	return OutboxEventResponse{
		ID:            e.ID,
		Channel:       e.Channel,
		EventType:     e.EventType,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Integration:   e.Integration,
		Status:        e.Status,
		Attempts:      e.Attempts,
		NextAttemptAt: e.NextAttemptAt,
		LastError:     e.LastError,
		DeliveredAt:   e.DeliveredAt,
		CreatedAt:     e.CreatedAt,
	}
}

type AuditEntryResponse struct {
	ID          int64     `json:"id"`
	ActorID     int64     `json:"actor_id"`
	Action      string    `json:"action"`
	TargetType  string    `json:"target_type"`
	TargetID    int64     `json:"target_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
