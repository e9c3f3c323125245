package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Mock is an in-process gateway for local runs and tests. Intents always
// succeed and webhooks are signed with HMAC-SHA256 over the raw body.
type Mock struct {
	secret []byte
}

func NewMock(webhookSecret string) *Mock {
	return &Mock{secret: []byte(webhookSecret)}
}

type mockEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		IntentID string `json:"intent_id"`
	} `json:"data"`
}

func (m *Mock) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := "pi_mock_" + uuid.NewString()
	return &Intent{ID: id, ClientToken: id + "_secret_" + uuid.NewString()}, nil
}

func (m *Mock) VerifySignature(payload []byte, signatureHeader string) bool {
	got, err := hex.DecodeString(signatureHeader)
	if err != nil || len(got) == 0 {
		return false
	}
	return hmac.Equal(got, m.mac(payload))
}

func (m *Mock) ParseEvent(payload []byte) (*Event, error) {
	var raw mockEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if raw.Type == EventPaymentSucceeded && raw.Data.IntentID == "" {
		return nil, fmt.Errorf("%w: %s has no intent id", ErrMalformedEvent, raw.ID)
	}
	return &Event{ID: raw.ID, Type: raw.Type, IntentID: raw.Data.IntentID}, nil
}

func (m *Mock) PublishableKey() string {
	return "pk_mock"
}

// Sign returns the signature header value for payload.
func (m *Mock) Sign(payload []byte) string {
	return hex.EncodeToString(m.mac(payload))
}

// NewEvent builds a raw callback body of the given type for intentID.
func (m *Mock) NewEvent(eventType, intentID string) []byte {
	ev := mockEvent{ID: "evt_mock_" + uuid.NewString(), Type: eventType}
	ev.Data.IntentID = intentID
	payload, _ := json.Marshal(ev)
	return payload
}

func (m *Mock) mac(payload []byte) []byte {
	h := hmac.New(sha256.New, m.secret)
	h.Write(payload)
	return h.Sum(nil)
}
