package statemachine_test

import (
	"testing"

	"github.com/code-catapult/devmart-pro-sub002/internal/models"
	"github.com/code-catapult/devmart-pro-sub002/internal/statemachine"

	"github.com/stretchr/testify/assert"
)

// expectedTransitions mirrors the full table so the test fails if the
// table and the implementation ever drift apart.
var expectedTransitions = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.OrderStatusPending: {
		models.OrderStatusProcessing: true,
		models.OrderStatusCancelled:  true,
	},
	models.OrderStatusProcessing: {
		models.OrderStatusShipped:   true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusShipped: {
		models.OrderStatusDelivered: true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusDelivered: {},
	models.OrderStatusCancelled: {},
}

func TestIsValidTransition_FullTable(t *testing.T) {
	// Check every (from, to) pair, including self-transitions.
	for _, from := range models.OrderStatuses {
		for _, to := range models.OrderStatuses {
			expected := expectedTransitions[from][to]
			got := statemachine.IsValidTransition(from, to)
			assert.Equal(t, expected, got, "transition %s -> %s", from, to)
		}
	}
}

func TestIsValidTransition_UnknownStatus(t *testing.T) {
	assert.False(t, statemachine.IsValidTransition("refunded", models.OrderStatusCancelled))
	assert.False(t, statemachine.IsValidTransition(models.OrderStatusPending, "refunded"))
	assert.False(t, statemachine.IsValidTransition("", ""))
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, statemachine.IsTerminal(models.OrderStatusDelivered))
	assert.True(t, statemachine.IsTerminal(models.OrderStatusCancelled))
	assert.False(t, statemachine.IsTerminal(models.OrderStatusPending))
	assert.False(t, statemachine.IsTerminal(models.OrderStatusProcessing))
	assert.False(t, statemachine.IsTerminal(models.OrderStatusShipped))

	// Terminal statuses must have zero outgoing transitions.
	assert.Empty(t, statemachine.AllowedTransitions(models.OrderStatusDelivered))
	assert.Empty(t, statemachine.AllowedTransitions(models.OrderStatusCancelled))
}

func TestRequiresConfirmation(t *testing.T) {
	for _, from := range models.OrderStatuses {
		for _, to := range models.OrderStatuses {
			expected := from == models.OrderStatusShipped && to == models.OrderStatusCancelled
			assert.Equal(t, expected, statemachine.RequiresConfirmation(from, to), "%s -> %s", from, to)
		}
	}
}

func TestDescribeRejection(t *testing.T) {
	// Terminal state wording.
	msg := statemachine.DescribeRejection(models.OrderStatusDelivered, models.OrderStatusPending)
	assert.Contains(t, msg, "terminal")
	assert.Contains(t, msg, "delivered")

	msg = statemachine.DescribeRejection(models.OrderStatusCancelled, models.OrderStatusProcessing)
	assert.Contains(t, msg, "terminal")

	// Structurally invalid transition wording names the allowed targets.
	msg = statemachine.DescribeRejection(models.OrderStatusShipped, models.OrderStatusPending)
	assert.NotContains(t, msg, "terminal")
	assert.Contains(t, msg, "shipped")
	assert.Contains(t, msg, "delivered")

	// Unknown statuses are called out rather than misclassified.
	msg = statemachine.DescribeRejection("refunded", models.OrderStatusPending)
	assert.Contains(t, msg, "unknown")
}

func TestAllowedTransitions_ReturnsCopy(t *testing.T) {
	first := statemachine.AllowedTransitions(models.OrderStatusPending)
	assert.Len(t, first, 2)
	first[0] = models.OrderStatusDelivered

	second := statemachine.AllowedTransitions(models.OrderStatusPending)
	assert.Equal(t, models.OrderStatusProcessing, second[0])
}
