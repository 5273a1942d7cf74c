package models

import "errors"

// Domain error taxonomy. Services wrap these sentinels with context via
// fmt.Errorf("%w: ..."); handlers classify with errors.Is instead of
// matching on message strings.
var (
	// ErrEmptyCart means checkout was attempted with no cart rows.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrProductUnavailable means a cart references a product that no
	// longer exists or is not active for purchase.
	ErrProductUnavailable = errors.New("product unavailable")

	// ErrInsufficientInventory means the conditional stock decrement found
	// fewer units than requested. The wrapping message carries the exact
	// remaining stock.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// ErrOrderNotFound means no order matches the given id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition means the state machine rejected a status
	// change. No code path may force the change anyway.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConfirmationRequired means a transition is legal but risky and
	// the caller did not confirm it explicitly.
	ErrConfirmationRequired = errors.New("transition requires confirmation")

	// ErrStatusConflict means the order status changed under a concurrent
	// writer between read and update. Retryable.
	ErrStatusConflict = errors.New("order status changed concurrently")
)
