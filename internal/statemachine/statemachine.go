// Package statemachine is the single source of truth for legal order
// status transitions. It is pure logic with no persistence or I/O, so the
// checkout path, the webhook path and the admin path can never disagree
// about what a legal status change is.
package statemachine

import (
	"fmt"

	"github.com/code-catapult/devmart-pro-sub002/internal/models"
)

// transitions is the full table of allowed status changes. Delivered and
// cancelled are terminal: zero outgoing transitions.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivered:  {},
	models.OrderStatusCancelled:  {},
}

// IsValidTransition reports whether moving from one status to the other
// is allowed by the transition table.
func IsValidTransition(from, to models.OrderStatus) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func IsTerminal(status models.OrderStatus) bool {
	allowed, ok := transitions[status]
	return ok && len(allowed) == 0
}

// RequiresConfirmation flags transitions that are legal but operationally
// risky. Cancelling a shipped order is the only such case today: the
// package may already be physically in transit, so callers must surface
// an explicit warning before applying it.
func RequiresConfirmation(from, to models.OrderStatus) bool {
	return from == models.OrderStatusShipped && to == models.OrderStatusCancelled
}

// AllowedTransitions returns a copy of the legal target statuses for the
// given status.
func AllowedTransitions(from models.OrderStatus) []models.OrderStatus {
	allowed, ok := transitions[from]
	if !ok {
		return nil
	}
	out := make([]models.OrderStatus, len(allowed))
	copy(out, allowed)
	return out
}

// DescribeRejection produces a user-facing explanation for why a
// transition is not allowed, distinguishing terminal states from
// structurally invalid moves.
func DescribeRejection(from, to models.OrderStatus) string {
	if !models.IsKnownOrderStatus(from) || !models.IsKnownOrderStatus(to) {
		return fmt.Sprintf("unknown order status in transition %q -> %q", from, to)
	}
	if IsTerminal(from) {
		return fmt.Sprintf("order is %s, which is a terminal status; no further changes are possible", from)
	}
	return fmt.Sprintf("cannot move an order from %s to %s; allowed next statuses are %v", from, to, AllowedTransitions(from))
}
