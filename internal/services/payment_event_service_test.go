package services_test

import (
	"encoding/json"
	"testing"

	"github.com/code-catapult/devmart-pro-sub002/internal/models"
	"github.com/code-catapult/devmart-pro-sub002/internal/repositories"
	"github.com/code-catapult/devmart-pro-sub002/internal/services"
	"github.com/code-catapult/devmart-pro-sub002/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_test"

type paymentFixture struct {
	db      *gorm.DB
	service *services.PaymentEventService
	client  *payment.Client
	ledger  repositories.WebhookEventRepository
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	db := setupTestDB(t)
	client := payment.NewClient(testWebhookSecret)
	ledger := repositories.NewGORMWebhookEventRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	return &paymentFixture{
		db:      db,
		service: services.NewPaymentEventService(orderRepo, ledger, client, nil),
		client:  client,
		ledger:  ledger,
	}
}

func (f *paymentFixture) seedOrder(t *testing.T, id string, status models.OrderStatus, paymentRef string) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.Order{
		ID:               id,
		OrderNumber:      "ORD-20260831-" + id,
		UserID:           "user-1",
		Status:           status,
		PaymentReference: paymentRef,
	}).Error)
}

func (f *paymentFixture) eventBody(t *testing.T, id, eventType, paymentRef string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"id":                id,
		"type":              eventType,
		"payment_reference": paymentRef,
	})
	require.NoError(t, err)
	return body
}

// deliver signs the body with the shared secret and processes it, exactly
// as a real provider delivery would arrive.
func (f *paymentFixture) deliver(body []byte) error {
	return f.service.Process(body, f.client.Sign(body))
}

func (f *paymentFixture) orderStatus(t *testing.T, id string) models.OrderStatus {
	t.Helper()
	var order models.Order
	require.NoError(t, f.db.First(&order, "id = ?", id).Error)
	return order.Status
}

func TestPaymentEvent_SucceededMovesOrderToProcessing(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedOrder(t, "order-1", models.OrderStatusPending, "pi_123")

	body := f.eventBody(t, "evt_1", payment.EventPaymentSucceeded, "pi_123")
	require.NoError(t, f.deliver(body))

	assert.Equal(t, models.OrderStatusProcessing, f.orderStatus(t, "order-1"))

	entry, err := f.ledger.GetByEventID("evt_1")
	require.NoError(t, err)
	assert.True(t, entry.Processed)
	assert.JSONEq(t, string(body), entry.Payload)
}

func TestPaymentEvent_DuplicateDeliveryAppliesOnce(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedOrder(t, "order-1", models.OrderStatusPending, "pi_123")

	body := f.eventBody(t, "evt_1", payment.EventPaymentSucceeded, "pi_123")
	require.NoError(t, f.deliver(body))
	assert.Equal(t, models.OrderStatusProcessing, f.orderStatus(t, "order-1"))

	// Redelivery of the identical payload acknowledges without a second
	// side effect. If the transition re-ran it would be rejected anyway,
	// but the ledger short-circuits before dispatch even happens.
	require.NoError(t, f.deliver(body))
	assert.Equal(t, models.OrderStatusProcessing, f.orderStatus(t, "order-1"))

	var ledgerRows int64
	f.db.Model(&models.WebhookEvent{}).Count(&ledgerRows)
	assert.Equal(t, int64(1), ledgerRows)
}

func TestPaymentEvent_InvalidSignatureLeavesNoTrace(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedOrder(t, "order-1", models.OrderStatusPending, "pi_123")

	body := f.eventBody(t, "evt_1", payment.EventPaymentSucceeded, "pi_123")

	err := f.service.Process(body, "deadbeef")
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)

	err = f.service.Process(body, "")
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)

	// Security property: no ledger row, no order mutation.
	var ledgerRows int64
	f.db.Model(&models.WebhookEvent{}).Count(&ledgerRows)
	assert.Zero(t, ledgerRows)
	assert.Equal(t, models.OrderStatusPending, f.orderStatus(t, "order-1"))
}

func TestPaymentEvent_MalformedBodyIsPermanent(t *testing.T) {
	f := newPaymentFixture(t)

	body := []byte(`{"type":"payment.succeeded"}`) // missing id
	err := f.deliver(body)
	assert.ErrorIs(t, err, payment.ErrMalformedEvent)

	var ledgerRows int64
	f.db.Model(&models.WebhookEvent{}).Count(&ledgerRows)
	assert.Zero(t, ledgerRows)
}

func TestPaymentEvent_FailedCancelsWhenLegal(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedOrder(t, "order-1", models.OrderStatusProcessing, "pi_123")

	body := f.eventBody(t, "evt_1", payment.EventPaymentFailed, "pi_123")
	require.NoError(t, f.deliver(body))

	assert.Equal(t, models.OrderStatusCancelled, f.orderStatus(t, "order-1"))
}

func TestPaymentEvent_IllegalTransitionIsLoggedNoOp(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedOrder(t, "order-1", models.OrderStatusDelivered, "pi_123")

	// A stale "payment failed" arriving after delivery must not corrupt
	// the terminal status; the event is still acknowledged and recorded.
	body := f.eventBody(t, "evt_1", payment.EventPaymentFailed, "pi_123")
	require.NoError(t, f.deliver(body))

	assert.Equal(t, models.OrderStatusDelivered, f.orderStatus(t, "order-1"))

	entry, err := f.ledger.GetByEventID("evt_1")
	require.NoError(t, err)
	assert.True(t, entry.Processed)
}

func TestPaymentEvent_RefundCancels(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedOrder(t, "order-1", models.OrderStatusProcessing, "pi_123")

	body := f.eventBody(t, "evt_1", payment.EventPaymentRefunded, "pi_123")
	require.NoError(t, f.deliver(body))

	assert.Equal(t, models.OrderStatusCancelled, f.orderStatus(t, "order-1"))
}

func TestPaymentEvent_DisputeIsLogOnly(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedOrder(t, "order-1", models.OrderStatusProcessing, "pi_123")

	body := f.eventBody(t, "evt_1", payment.EventDisputeOpened, "pi_123")
	require.NoError(t, f.deliver(body))

	assert.Equal(t, models.OrderStatusProcessing, f.orderStatus(t, "order-1"))

	entry, err := f.ledger.GetByEventID("evt_1")
	require.NoError(t, err)
	assert.True(t, entry.Processed)
}

func TestPaymentEvent_UnknownTypeAcknowledged(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedOrder(t, "order-1", models.OrderStatusPending, "pi_123")

	body := f.eventBody(t, "evt_1", "payment.method_attached", "pi_123")
	require.NoError(t, f.deliver(body))

	assert.Equal(t, models.OrderStatusPending, f.orderStatus(t, "order-1"))
}

func TestPaymentEvent_UnknownPaymentReferenceAcknowledged(t *testing.T) {
	f := newPaymentFixture(t)

	body := f.eventBody(t, "evt_1", payment.EventPaymentSucceeded, "pi_nobody")
	require.NoError(t, f.deliver(body))

	entry, err := f.ledger.GetByEventID("evt_1")
	require.NoError(t, err)
	assert.True(t, entry.Processed)
}

func TestPaymentEvent_OutOfOrderScenario(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedOrder(t, "order-1", models.OrderStatusPending, "pi_123")

	// Succeeded arrives first: pending -> processing.
	require.NoError(t, f.deliver(f.eventBody(t, "evt_1", payment.EventPaymentSucceeded, "pi_123")))
	assert.Equal(t, models.OrderStatusProcessing, f.orderStatus(t, "order-1"))

	// An anomalous late "failed" while processing is still a legal
	// cancellation.
	require.NoError(t, f.deliver(f.eventBody(t, "evt_2", payment.EventPaymentFailed, "pi_123")))
	assert.Equal(t, models.OrderStatusCancelled, f.orderStatus(t, "order-1"))

	// Any further event finds a terminal order and no-ops.
	require.NoError(t, f.deliver(f.eventBody(t, "evt_3", payment.EventPaymentSucceeded, "pi_123")))
	assert.Equal(t, models.OrderStatusCancelled, f.orderStatus(t, "order-1"))
}

func TestPaymentEvent_FailedAttemptRetriesOnRedelivery(t *testing.T) {
	f := newPaymentFixture(t)
	f.seedOrder(t, "order-1", models.OrderStatusPending, "pi_123")

	// Simulate a crashed earlier attempt: the event is claimed and marked
	// failed, but the transition never happened.
	alreadyClaimed, err := f.ledger.Claim("evt_1", payment.EventPaymentSucceeded, "{}")
	require.NoError(t, err)
	require.False(t, alreadyClaimed)
	require.NoError(t, f.ledger.MarkFailed("evt_1", "database timeout"))

	// The provider redelivers; this time processing completes.
	body := f.eventBody(t, "evt_1", payment.EventPaymentSucceeded, "pi_123")
	require.NoError(t, f.deliver(body))

	assert.Equal(t, models.OrderStatusProcessing, f.orderStatus(t, "order-1"))

	entry, err := f.ledger.GetByEventID("evt_1")
	require.NoError(t, err)
	assert.True(t, entry.Processed)
	assert.Empty(t, entry.ProcessingError)
}
