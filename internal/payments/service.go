package payments

import (
	"context"
	"fmt"

	"ticketing/internal/shared/apperrors"

	"github.com/google/uuid"
)

// KeySource exposes the provider key browsers need to confirm a payment.
type KeySource interface {
	PublishableKey() string
}

type Service interface {
	GetPayment(ctx context.Context, id string, requester Requester) (*PaymentResponse, error)
	GetPublishableKey() *PublishableKeyResponse
}

// Requester is the authenticated caller of a payment lookup.
type Requester struct {
	UserID  uuid.UUID
	IsAdmin bool
}

type service struct {
	repo Repository
	keys KeySource
}

func NewService(repo Repository, keys KeySource) Service {
	return &service{repo: repo, keys: keys}
}

// GetPayment returns a payment to its buyer or an admin. Anyone else gets
// not found so payment ids cannot be probed.
func (s *service) GetPayment(ctx context.Context, id string, requester Requester) (*PaymentResponse, error) {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid payment ID %q: %w", id, apperrors.ErrInvalidInput)
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != requester.UserID && !requester.IsAdmin {
		return nil, ErrPaymentNotFound
	}

	resp := payment.ToResponse()
	return &resp, nil
}

func (s *service) GetPublishableKey() *PublishableKeyResponse {
	return &PublishableKeyResponse{PublishableKey: s.keys.PublishableKey()}
}
