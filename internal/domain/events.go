package domain

import "github.com/shopspring/decimal"

const (
	EventOrderStatusChanged     = "order.status_changed"
	EventOrderFulfilled         = "order.fulfilled"
	EventBalanceRequestApproved = "balance_request.approved"
	EventBalanceRequestRejected = "balance_request.rejected"
)

const (
	AggregateOrder          = "order"
	AggregateBalanceRequest = "balance_request"
	AggregateUser           = "user"
	AggregateCoupon         = "coupon"
	AggregateOutboxEvent    = "outbox_event"
)

// WebhookPayload is the body POSTed to an integration endpoint.
type WebhookPayload struct {
	Event             string          `json:"event"`
	OrderID           int64           `json:"order_id"`
	OrderKind         OrderKind       `json:"order_kind"`
	Status            OrderStatusType `json:"status"`
	PreviousStatus    OrderStatusType `json:"previous_status"`
	ExternalReference string          `json:"external_reference,omitempty"`
	SKU               string          `json:"sku,omitempty"`
	Quantity          int             `json:"quantity"`
	Total             decimal.Decimal `json:"total"`
	AdminNote         string          `json:"admin_note,omitempty"`
}

type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type ChatPayload struct {
	Text string `json:"text"`
}
