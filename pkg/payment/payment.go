// Package payment wraps the payment provider integration: webhook
// signature verification against a shared secret and event payload
// parsing. Signature verification is a security boundary; callers must
// reject a request before any state is written when it fails.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the raw request
// body, computed with the shared webhook secret.
const SignatureHeader = "X-Payment-Signature"

// Event types delivered by the provider. Unrecognized types are
// acknowledged and ignored by the processor.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
	EventPaymentRefunded  = "payment.refunded"
	EventDisputeOpened    = "payment.dispute_opened"
)

var (
	// ErrInvalidSignature means the signature header is missing or does
	// not match the request body. Permanent; the provider must not retry.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrMalformedEvent means the payload could not be parsed into an
	// event or is missing required fields.
	ErrMalformedEvent = errors.New("malformed webhook event")
)

// Event is an inbound payment notification. ID is the provider's unique
// external event id and is the deduplication key.
type Event struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	PaymentReference string `json:"payment_reference"`
	Reason           string `json:"reason,omitempty"`
	Amount           int64  `json:"amount,omitempty"`
}

// Client verifies and signs webhook payloads with a shared secret.
type Client struct {
	secret []byte
}

// NewClient creates a payment provider client for the given shared
// webhook secret.
func NewClient(secret string) *Client {
	return &Client{secret: []byte(secret)}
}

// Sign computes the hex-encoded HMAC-SHA256 signature for a payload.
// Used by tests and by the provider simulator; the real provider computes
// the same value on its side.
func (c *Client) Sign(body []byte) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the signature header against the raw request
// body. Comparison is constant-time.
func (c *Client) VerifySignature(body []byte, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return fmt.Errorf("%w: missing %s header", ErrInvalidSignature, SignatureHeader)
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: signature is not valid hex", ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write(body)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidSignature)
	}
	return nil
}

// ParseEvent decodes a verified webhook body into an Event. The id and
// type fields are required; payment_reference may be absent for event
// types that do not target a specific order.
func ParseEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, fmt.Errorf("%w: missing event id", ErrMalformedEvent)
	}
	if strings.TrimSpace(event.Type) == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrMalformedEvent)
	}
	return &event, nil
}
