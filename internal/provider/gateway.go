// Package provider is the boundary to the external payment processor.
package provider

import (
	"context"
	"errors"

	"ticketing/pkg/money"
)

// Event types the settlement flow understands. Provider-specific names are
// mapped onto these by ParseEvent.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

var ErrMalformedEvent = errors.New("malformed provider event")

// IntentRequest describes the charge for one reserved ticket.
type IntentRequest struct {
	Amount   money.Amount
	Currency string
	TicketID string
	BuyerID  string
}

// Intent is the provider's handle for a pending charge. ClientToken is handed
// to the buyer's browser to confirm the payment.
type Intent struct {
	ID          string
	ClientToken string
}

// Event is an inbound settlement notification after signature checks.
type Event struct {
	ID       string
	Type     string
	IntentID string
}

// Gateway is implemented by each supported payment processor.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	VerifySignature(payload []byte, signatureHeader string) bool
	ParseEvent(payload []byte) (*Event, error)
	PublishableKey() string
}
