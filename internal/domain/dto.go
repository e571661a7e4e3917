package domain

type OrderKind string

const (
	OrderKindPackage OrderKind = "package"
	OrderKindProduct OrderKind = "product"
)

func (k OrderKind) Valid() bool {
	return k == OrderKindPackage || k == OrderKindProduct
}

type OrderStatusType string

const (
	OrderStatusPending    OrderStatusType = "pending"
	OrderStatusPaid       OrderStatusType = "paid"
	OrderStatusProcessing OrderStatusType = "processing"
	OrderStatusCompleted  OrderStatusType = "completed"
	OrderStatusCancelled  OrderStatusType = "cancelled"
)

type DirectionType string

const (
	DirectionCredit DirectionType = "credit"
	DirectionDebit  DirectionType = "debit"
)

func (d DirectionType) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

type BalanceRequestStatus string

const (
	BalanceRequestPending  BalanceRequestStatus = "pending"
	BalanceRequestApproved BalanceRequestStatus = "approved"
	BalanceRequestRejected BalanceRequestStatus = "rejected"
)

type DiscountType string

const (
	DiscountFixed   DiscountType = "fixed"
	DiscountPercent DiscountType = "percent"
)

type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "active"
	CouponStatusInactive CouponStatus = "inactive"
)

// DebitPolicy decides what a manual debit does when it exceeds the balance.
type DebitPolicy string

const (
	// StrictDebit rejects the debit with ErrInsufficientFunds.
	StrictDebit DebitPolicy = "strict"
	// ClampedDebit applies min(amount, balance) and records the applied amount.
	ClampedDebit DebitPolicy = "clamped"
)

func (p DebitPolicy) Valid() bool {
	return p == StrictDebit || p == ClampedDebit
}

type OutboxChannel string

const (
	OutboxChannelWebhook OutboxChannel = "webhook"
	OutboxChannelEmail   OutboxChannel = "email"
	OutboxChannelChat    OutboxChannel = "chat"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusDelivered OutboxStatus = "delivered"
	OutboxStatusFailed    OutboxStatus = "failed"
)

func (s OutboxStatus) Valid() bool {
	return s == OutboxStatusPending || s == OutboxStatusDelivered || s == OutboxStatusFailed
}

// SystemActorID is used as actor for operations initiated by integrations rather than an operator.
const SystemActorID int64 = 0
