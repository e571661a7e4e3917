package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transition is a permitted status change together with the balance movement it requires.
type Transition struct {
	Kind  OrderKind
	From  OrderStatusType
	To    OrderStatusType
	Delta decimal.Decimal
}

// Direction returns the ledger direction and the absolute amount of the transition delta.
// ok is false when the transition does not touch the balance.
func (t Transition) Direction() (DirectionType, decimal.Decimal, bool) {
	switch t.Delta.Sign() {
	case 1:
		return DirectionCredit, t.Delta, true
	case -1:
		return DirectionDebit, t.Delta.Abs(), true
	default:
		return "", decimal.Zero, false
	}
}

type deltaRule int

const (
	deltaNone deltaRule = iota
	deltaDebit
	deltaCredit
)

var packageTransitions = map[OrderStatusType]map[OrderStatusType]deltaRule{
	OrderStatusPending: {
		OrderStatusPaid:      deltaDebit,
		OrderStatusCancelled: deltaNone,
	},
	OrderStatusPaid: {
		OrderStatusCompleted: deltaNone,
		OrderStatusCancelled: deltaCredit,
	},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

var productStatuses = []OrderStatusType{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// ValidateTarget checks that status exists for the order kind. It does not look at the current status.
func ValidateTarget(kind OrderKind, status OrderStatusType) error {
	switch kind {
	case OrderKindPackage:
		if _, ok := packageTransitions[status]; ok {
			return nil
		}
	case OrderKindProduct:
		for _, s := range productStatuses {
			if s == status {
				return nil
			}
		}
	default:
		return fmt.Errorf("%w: unknown order kind %q", ErrValidation, kind)
	}
	return fmt.Errorf("%w: status %q is not valid for %s orders", ErrValidation, status, kind)
}

// PlanTransition looks the move up in the transition table of the order kind.
//
// Returns ErrValidation for an unknown kind or status, ErrConflict if the order is already in the target
// status or the move is not permitted.
func PlanTransition(
	kind OrderKind,
	from OrderStatusType,
	to OrderStatusType,
	amount decimal.Decimal,
) (Transition, error) {
	if err := ValidateTarget(kind, to); err != nil {
		return Transition{}, err
	}
	if from == to {
		return Transition{}, fmt.Errorf("%w: order is already %s", ErrConflict, to)
	}

	var rule deltaRule
	switch kind {
	case OrderKindPackage:
		r, ok := packageTransitions[from][to]
		if !ok {
			return Transition{}, fmt.Errorf("%w: transition %s -> %s is not permitted", ErrConflict, from, to)
		}
		rule = r
	case OrderKindProduct:
		if err := ValidateTarget(kind, from); err != nil {
			return Transition{}, fmt.Errorf("%w: transition %s -> %s is not permitted", ErrConflict, from, to)
		}
		rule = productRule(from, to)
	}

	t := Transition{Kind: kind, From: from, To: to, Delta: decimal.Zero}
	switch rule {
	case deltaDebit:
		t.Delta = amount.Neg()
	case deltaCredit:
		t.Delta = amount
	case deltaNone:
	}
	return t, nil
}

// productRule is the product order delta table: crossing the cancelled bucket moves money, anything else
// does not.
func productRule(from, to OrderStatusType) deltaRule {
	fromCancelled := from == OrderStatusCancelled
	toCancelled := to == OrderStatusCancelled
	switch {
	case fromCancelled && !toCancelled:
		return deltaDebit
	case !fromCancelled && toCancelled:
		return deltaCredit
	default:
		return deltaNone
	}
}
