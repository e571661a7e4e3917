package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")

	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPersistence       = errors.New("persistence error")
	ErrNotification      = errors.New("notification error")

	ErrLockTimeout = fmt.Errorf("%w: lock wait timeout", ErrConflict)
	ErrNotPending  = fmt.Errorf("%w: not pending", ErrConflict)
)

// Coupon rejection reasons, all of them are ErrValidation.
var (
	ErrCouponNotFound      = fmt.Errorf("%w: coupon not found", ErrValidation)
	ErrCouponInactive      = fmt.Errorf("%w: coupon is not active", ErrValidation)
	ErrCouponNotStarted    = fmt.Errorf("%w: coupon is not active yet", ErrValidation)
	ErrCouponExpired       = fmt.Errorf("%w: coupon expired", ErrValidation)
	ErrCouponMinAmount     = fmt.Errorf("%w: order amount is below coupon minimum", ErrValidation)
	ErrCouponExhausted     = fmt.Errorf("%w: coupon usage limit reached", ErrValidation)
	ErrCouponUserLimit     = fmt.Errorf("%w: coupon usage limit per user reached", ErrValidation)
	ErrCouponBadDefinition = fmt.Errorf("%w: invalid coupon definition", ErrValidation)
)

// NotificationError describes a failed delivery of an outbox event. The state change that produced the event
// is already committed.
type NotificationError struct {
	EventID uuid.UUID
	Channel OutboxChannel
	Err     error
}

func NewNotificationError(eventID uuid.UUID, channel OutboxChannel, err error) *NotificationError {
	return &NotificationError{EventID: eventID, Channel: channel, Err: err}
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%s notification %s failed: %v", e.Channel, e.EventID, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

func (e *NotificationError) Is(target error) bool {
	return target == ErrNotification //nolint:errorlint
}

// IsKnown reports whether err belongs to the domain error taxonomy.
func IsKnown(err error) bool {
	for _, known := range []error{
		ErrRecordNotFound,
		ErrDuplicateKey,
		ErrValidation,
		ErrConflict,
		ErrInsufficientFunds,
		ErrPersistence,
		ErrNotification,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
