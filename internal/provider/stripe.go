package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

var stripeEventTypes = map[stripe.EventType]string{
	stripe.EventTypePaymentIntentSucceeded:     EventPaymentSucceeded,
	stripe.EventTypePaymentIntentPaymentFailed: EventPaymentFailed,
}

// Stripe creates PaymentIntents and checks Stripe-Signature headers.
type Stripe struct {
	api            *client.API
	publishableKey string
	webhookSecret  string
}

type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
	// Backends overrides the HTTP backends, for tests against a local server.
	Backends *stripe.Backends
}

func NewStripe(cfg StripeConfig) *Stripe {
	return &Stripe{
		api:            client.New(cfg.SecretKey, cfg.Backends),
		publishableKey: cfg.PublishableKey,
		webhookSecret:  cfg.WebhookSecret,
	}
}

func (s *Stripe) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount.Cents()),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("ticket_id", req.TicketID)
	params.AddMetadata("buyer_id", req.BuyerID)

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientToken: pi.ClientSecret}, nil
}

func (s *Stripe) VerifySignature(payload []byte, signatureHeader string) bool {
	if signatureHeader == "" || s.webhookSecret == "" {
		return false
	}
	return webhook.ValidatePayload(payload, signatureHeader, s.webhookSecret) == nil
}

// ParseEvent decodes a verified Stripe event. Only PaymentIntent events carry
// an intent id; other types come back with IntentID empty.
func (s *Stripe) ParseEvent(payload []byte) (*Event, error) {
	var raw stripe.Event
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	event := &Event{ID: raw.ID, Type: string(raw.Type)}
	mapped, ok := stripeEventTypes[raw.Type]
	if !ok {
		return event, nil
	}
	event.Type = mapped

	if raw.Data == nil {
		return nil, fmt.Errorf("%w: %s has no data", ErrMalformedEvent, raw.ID)
	}
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(raw.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("%w: %s has no payment intent id", ErrMalformedEvent, raw.ID)
	}
	event.IntentID = intent.ID
	return event, nil
}

func (s *Stripe) PublishableKey() string {
	return s.publishableKey
}
