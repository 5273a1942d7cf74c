package payment_test

import (
	"errors"
	"testing"

	"github.com/code-catapult/devmart-pro-sub002/pkg/payment"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	client := payment.NewClient("test-secret")
	body := []byte(`{"id":"evt_1","type":"payment.succeeded"}`)

	// A signature produced with the same secret verifies.
	sig := client.Sign(body)
	assert.NoError(t, client.VerifySignature(body, sig))

	// Tampered body fails.
	err := client.VerifySignature([]byte(`{"id":"evt_2"}`), sig)
	assert.True(t, errors.Is(err, payment.ErrInvalidSignature))

	// Wrong secret fails.
	other := payment.NewClient("other-secret")
	err = other.VerifySignature(body, sig)
	assert.True(t, errors.Is(err, payment.ErrInvalidSignature))

	// Missing or garbage signatures fail.
	err = client.VerifySignature(body, "")
	assert.True(t, errors.Is(err, payment.ErrInvalidSignature))
	err = client.VerifySignature(body, "not-hex!!")
	assert.True(t, errors.Is(err, payment.ErrInvalidSignature))
}

func TestParseEvent(t *testing.T) {
	event, err := payment.ParseEvent([]byte(`{"id":"evt_1","type":"payment.succeeded","payment_reference":"pi_123","amount":4200}`))
	assert.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, payment.EventPaymentSucceeded, event.Type)
	assert.Equal(t, "pi_123", event.PaymentReference)
	assert.Equal(t, int64(4200), event.Amount)

	_, err = payment.ParseEvent([]byte(`{"type":"payment.succeeded"}`))
	assert.True(t, errors.Is(err, payment.ErrMalformedEvent))

	_, err = payment.ParseEvent([]byte(`{"id":"evt_1"}`))
	assert.True(t, errors.Is(err, payment.ErrMalformedEvent))

	_, err = payment.ParseEvent([]byte(`not json`))
	assert.True(t, errors.Is(err, payment.ErrMalformedEvent))
}
