// Package purchases starts checkouts: it reserves a ticket for a buyer and
// opens a payment intent with the provider.
package purchases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ticketing/internal/payments"
	"ticketing/internal/provider"
	"ticketing/internal/shared/apperrors"
	"ticketing/internal/tickets"
	"ticketing/pkg/logger"
	"ticketing/pkg/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const releaseTimeout = 5 * time.Second

// Result is what the buyer needs to confirm the payment client-side.
type Result struct {
	PaymentID   uuid.UUID
	ClientToken string
}

type Coordinator struct {
	tickets         tickets.Repository
	payments        payments.Repository
	gateway         provider.Gateway
	providerTimeout time.Duration
	logger          *logger.Logger
	tracer          trace.Tracer
}

func NewCoordinator(ticketRepo tickets.Repository, paymentRepo payments.Repository, gateway provider.Gateway, providerTimeout time.Duration) *Coordinator {
	if providerTimeout <= 0 {
		providerTimeout = 10 * time.Second
	}
	return &Coordinator{
		tickets:         ticketRepo,
		payments:        paymentRepo,
		gateway:         gateway,
		providerTimeout: providerTimeout,
		logger:          logger.GetDefault().WithComponent("purchases"),
		tracer:          otel.Tracer("ticketing/purchases"),
	}
}

// BeginPurchase reserves ticketID for buyerID and opens a payment intent for
// its price. A lost race returns ErrConflict; a provider failure releases the
// reservation and returns ErrProvider. Nothing is retried here.
func (c *Coordinator) BeginPurchase(ctx context.Context, buyerID, ticketID uuid.UUID) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "purchases.BeginPurchase", trace.WithAttributes(
		attribute.String("ticket.id", ticketID.String()),
		attribute.String("buyer.id", buyerID.String()),
	))
	defer span.End()

	result, err := c.beginPurchase(ctx, buyerID, ticketID)
	metrics.TrackPurchase(outcome(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("payment.id", result.PaymentID.String()))
	return result, nil
}

func (c *Coordinator) beginPurchase(ctx context.Context, buyerID, ticketID uuid.UUID) (*Result, error) {
	ticket, err := c.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	reserved, err := c.tickets.TryReserve(ctx, ticketID, buyerID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, fmt.Errorf("ticket %s is no longer available: %w", ticketID, apperrors.ErrConflict)
	}

	intent, err := c.createIntent(ctx, ticket, buyerID)
	if err != nil {
		c.release(ctx, ticketID, buyerID, "payment intent failed")
		return nil, fmt.Errorf("create payment intent: %w", errors.Join(apperrors.ErrProvider, err))
	}

	payment, err := c.payments.Create(ctx, buyerID, ticketID, intent.ID, ticket.Price, ticket.Currency)
	if err != nil {
		// No payment row exists, so putting the ticket back is still safe
		c.release(ctx, ticketID, buyerID, "payment record failed")
		return nil, err
	}

	c.logger.LogTicketReserved(ctx, ticketID.String(), buyerID.String(), payment.ID.String())
	return &Result{PaymentID: payment.ID, ClientToken: intent.ClientToken}, nil
}

func (c *Coordinator) createIntent(ctx context.Context, ticket *tickets.Ticket, buyerID uuid.UUID) (*provider.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.providerTimeout)
	defer cancel()

	started := time.Now()
	intent, err := c.gateway.CreatePaymentIntent(ctx, provider.IntentRequest{
		Amount:   ticket.Price,
		Currency: ticket.Currency,
		TicketID: ticket.ID.String(),
		BuyerID:  buyerID.String(),
	})
	metrics.TrackProviderCall("create_payment_intent", started, err)
	if err != nil {
		return nil, err
	}
	if intent == nil || intent.ID == "" {
		return nil, errors.New("provider returned an empty payment intent")
	}
	return intent, nil
}

// release undoes TryReserve. It runs even when the caller has gone away,
// otherwise the ticket would stay RESERVED with no payment behind it.
func (c *Coordinator) release(ctx context.Context, ticketID, buyerID uuid.UUID, reason string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	released, err := c.tickets.Release(releaseCtx, ticketID, buyerID)
	metrics.TrackCompensation(err == nil && released)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to release reservation",
			"ticket_id", ticketID.String(),
			"user_id", buyerID.String(),
			"reason", reason,
			"error", err,
		)
		return
	}
	if !released {
		c.logger.LogAnomaly(ctx, "reservation gone before release",
			slog.String("ticket_id", ticketID.String()),
			slog.String("user_id", buyerID.String()),
		)
		return
	}
	c.logger.LogReservationReleased(ctx, ticketID.String(), buyerID.String(), reason)
}

func outcome(err error) string {
	if err == nil {
		return metrics.PurchaseOK
	}
	switch apperrors.Kind(err) {
	case apperrors.ErrNotFound:
		return metrics.PurchaseNotFound
	case apperrors.ErrConflict:
		return metrics.PurchaseConflict
	case apperrors.ErrProvider:
		return metrics.PurchaseProviderError
	default:
		return metrics.PurchaseStoreError
	}
}
