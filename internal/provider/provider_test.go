package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ticketing/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

func TestMock_SignAndVerify(t *testing.T) {
	gw := NewMock("whsec_test")
	payload := gw.NewEvent(EventPaymentSucceeded, "pi_1")

	assert.True(t, gw.VerifySignature(payload, gw.Sign(payload)))
	assert.False(t, gw.VerifySignature(payload, ""))
	assert.False(t, gw.VerifySignature(payload, "zz-not-hex"))
	assert.False(t, gw.VerifySignature(append(payload, ' '), gw.Sign(payload)), "body changed after signing")
	assert.False(t, NewMock("other").VerifySignature(payload, gw.Sign(payload)), "wrong secret")
}

func TestMock_ParseEvent(t *testing.T) {
	gw := NewMock("whsec_test")

	event, err := gw.ParseEvent(gw.NewEvent(EventPaymentSucceeded, "pi_42"))
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, "pi_42", event.IntentID)
	assert.NotEmpty(t, event.ID)

	_, err = gw.ParseEvent([]byte(`{"type":"payment.succeeded","data":{}}`))
	assert.ErrorIs(t, err, ErrMalformedEvent)

	_, err = gw.ParseEvent([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestMock_CreatePaymentIntent(t *testing.T) {
	gw := NewMock("whsec_test")

	a, err := gw.CreatePaymentIntent(context.Background(), IntentRequest{Amount: 5000, Currency: "usd"})
	require.NoError(t, err)
	b, err := gw.CreatePaymentIntent(context.Background(), IntentRequest{Amount: 5000, Currency: "usd"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Contains(t, a.ClientToken, a.ID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gw.CreatePaymentIntent(ctx, IntentRequest{Amount: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func newStripeAgainst(t *testing.T, handler http.HandlerFunc) *Stripe {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})

	return NewStripe(StripeConfig{
		SecretKey:      "sk_test_123",
		PublishableKey: "pk_test_123",
		WebhookSecret:  "whsec_test",
		Backends:       &stripe.Backends{API: backend, Connect: backend, Uploads: backend},
	})
}

func TestStripe_CreatePaymentIntent(t *testing.T) {
	gw := newStripeAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "5000", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "true", r.PostForm.Get("automatic_payment_methods[enabled]"))
		assert.Equal(t, "t-1", r.PostForm.Get("metadata[ticket_id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret_abc"}`))
	})

	intent, err := gw.CreatePaymentIntent(context.Background(), IntentRequest{
		Amount:   money.FromCents(5000),
		Currency: "usd",
		TicketID: "t-1",
		BuyerID:  "b-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientToken)
	assert.Equal(t, "pk_test_123", gw.PublishableKey())
}

func TestStripe_CreatePaymentIntent_Error(t *testing.T) {
	gw := newStripeAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","message":"declined"}}`))
	})

	_, err := gw.CreatePaymentIntent(context.Background(), IntentRequest{Amount: 100, Currency: "usd"})
	assert.Error(t, err)
}

func TestStripe_VerifyAndParse(t *testing.T) {
	gw := NewStripe(StripeConfig{SecretKey: "sk_test", WebhookSecret: "whsec_test"})
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_789", "object": "payment_intent"}}
	}`)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    "whsec_test",
		Timestamp: time.Now(),
	})

	assert.True(t, gw.VerifySignature(payload, signed.Header))
	assert.False(t, gw.VerifySignature(payload, "t=1,v1=deadbeef"))
	assert.False(t, gw.VerifySignature(payload, ""))

	event, err := gw.ParseEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, "pi_789", event.IntentID)
	assert.Equal(t, "evt_1", event.ID)
}

func TestStripe_ParseEvent_UnmappedType(t *testing.T) {
	gw := NewStripe(StripeConfig{SecretKey: "sk_test"})

	event, err := gw.ParseEvent([]byte(`{"id":"evt_2","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", event.Type)
	assert.Empty(t, event.IntentID)
}
