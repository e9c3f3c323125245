// Package settlement turns provider payment confirmations into sold tickets.
// Providers deliver callbacks at least once and in any order, so every step
// here is safe to repeat.
package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
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

// Deliverer hands a settled purchase to invoice generation. It owns its own
// retries; the coordinator only logs a failure.
type Deliverer interface {
	Deliver(ctx context.Context, ticketID, paymentID uuid.UUID) error
}

// Callback is one inbound provider notification as received.
type Callback struct {
	Payload   []byte
	Signature string
}

type Coordinator struct {
	tickets         tickets.Repository
	payments        payments.Repository
	gateway         provider.Gateway
	deliverer       Deliverer
	deliveryTimeout time.Duration
	logger          *logger.Logger
	tracer          trace.Tracer

	inflight sync.WaitGroup
}

func NewCoordinator(ticketRepo tickets.Repository, paymentRepo payments.Repository, gateway provider.Gateway, deliverer Deliverer, deliveryTimeout time.Duration) *Coordinator {
	if deliveryTimeout <= 0 {
		deliveryTimeout = 30 * time.Second
	}
	return &Coordinator{
		tickets:         ticketRepo,
		payments:        paymentRepo,
		gateway:         gateway,
		deliverer:       deliverer,
		deliveryTimeout: deliveryTimeout,
		logger:          logger.GetDefault().WithComponent("settlement"),
		tracer:          otel.Tracer("ticketing/settlement"),
	}
}

// HandleProviderCallback processes one provider notification. A nil error is
// an acknowledgement, and redelivered events are acknowledged exactly like the
// first delivery. Possible errors: ErrUnauthenticated, ErrInvalidInput,
// ErrNotFound (unknown intent) and ErrStoreUnavailable.
func (c *Coordinator) HandleProviderCallback(ctx context.Context, cb Callback) error {
	ctx, span := c.tracer.Start(ctx, "settlement.HandleProviderCallback")
	defer span.End()

	outcome, err := c.handle(ctx, span, cb)
	metrics.TrackSettlement(outcome)
	span.SetAttributes(attribute.String("settlement.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Coordinator) handle(ctx context.Context, span trace.Span, cb Callback) (string, error) {
	if !c.gateway.VerifySignature(cb.Payload, cb.Signature) {
		c.logger.LogSecurityEvent(ctx, "invalid_callback_signature", fmt.Sprintf("rejected %d byte payload", len(cb.Payload)))
		return metrics.SettlementUnauthenticated, fmt.Errorf("callback signature: %w", apperrors.ErrUnauthenticated)
	}

	event, err := c.gateway.ParseEvent(cb.Payload)
	if err != nil {
		c.logger.LogAnomaly(ctx, "signed provider callback could not be parsed",
			slog.Int("payload_bytes", len(cb.Payload)),
			slog.String("error", err.Error()),
		)
		return metrics.SettlementMalformed, fmt.Errorf("%v: %w", err, apperrors.ErrInvalidInput)
	}
	span.SetAttributes(
		attribute.String("provider.event_id", event.ID),
		attribute.String("provider.event_type", event.Type),
	)

	if event.Type != provider.EventPaymentSucceeded {
		c.logger.DebugContext(ctx, "Ignoring provider event", "event_id", event.ID, "type", event.Type)
		return metrics.SettlementIgnored, nil
	}

	payment, err := c.payments.FindByProviderRef(ctx, event.IntentID)
	if err != nil {
		return metrics.SettlementStoreError, err
	}
	if payment == nil {
		c.logger.ErrorContext(ctx, "Payment confirmed for unknown intent",
			"event_id", event.ID,
			"provider_ref", event.IntentID,
		)
		return metrics.SettlementUnknownReference, fmt.Errorf("no payment for intent %s: %w", event.IntentID, apperrors.ErrNotFound)
	}
	span.SetAttributes(
		attribute.String("payment.id", payment.ID.String()),
		attribute.String("ticket.id", payment.TicketID.String()),
	)

	settled, err := c.tickets.TrySettle(ctx, payment.TicketID)
	if err != nil {
		return metrics.SettlementStoreError, err
	}
	if !settled {
		return c.handleRedelivery(ctx, payment)
	}

	c.logger.LogTicketSettled(ctx, payment.TicketID.String(), payment.ID.String(), payment.ProviderRef)

	// If this fails the ticket is already SOLD; the provider's retry lands in
	// handleRedelivery and finishes the job.
	finalized, err := c.payments.MarkFinalized(ctx, payment.ID)
	if err != nil {
		return metrics.SettlementStoreError, err
	}
	if finalized {
		c.dispatchDelivery(ctx, payment)
	}
	return metrics.SettlementSettled, nil
}

// handleRedelivery covers a TrySettle that changed nothing. Normally the
// ticket is SOLD and the payment finalized, and the event is a duplicate. If
// an earlier attempt died between the two writes the payment is finalized
// now, and delivery goes out from here.
func (c *Coordinator) handleRedelivery(ctx context.Context, payment *payments.Payment) (string, error) {
	ticket, err := c.tickets.GetByID(ctx, payment.TicketID)
	if err != nil {
		return metrics.SettlementStoreError, err
	}

	if ticket.Status != tickets.StatusSold || ticket.UserID == nil || *ticket.UserID != payment.UserID {
		c.logger.LogAnomaly(ctx, "payment confirmed for a ticket it does not hold",
			slog.String("payment_id", payment.ID.String()),
			slog.String("ticket_id", ticket.ID.String()),
			slog.String("ticket_status", ticket.Status.String()),
		)
		return metrics.SettlementInconsistent, nil
	}

	finalized, err := c.payments.MarkFinalized(ctx, payment.ID)
	if err != nil {
		return metrics.SettlementStoreError, err
	}
	if !finalized {
		c.logger.InfoContext(ctx, "Duplicate settlement callback acknowledged",
			"payment_id", payment.ID.String(),
			"ticket_id", payment.TicketID.String(),
		)
		return metrics.SettlementDuplicate, nil
	}

	c.logger.WarnContext(ctx, "Finalized payment left open by an earlier callback",
		"payment_id", payment.ID.String(),
		"ticket_id", payment.TicketID.String(),
	)
	c.dispatchDelivery(ctx, payment)
	return metrics.SettlementRepaired, nil
}

// dispatchDelivery must only be called by the request that finalized the
// payment, which keeps delivery to once per payment.
func (c *Coordinator) dispatchDelivery(ctx context.Context, payment *payments.Payment) {
	ticketID, paymentID := payment.TicketID, payment.ID
	deliveryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.deliveryTimeout)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer cancel()

		err := c.deliverer.Deliver(deliveryCtx, ticketID, paymentID)
		metrics.TrackDelivery(err == nil)
		if err != nil {
			c.logger.LogDeliveryFailure(deliveryCtx, ticketID.String(), paymentID.String(), err)
		}
	}()
}

// Wait blocks until every dispatched delivery has returned.
func (c *Coordinator) Wait() {
	c.inflight.Wait()
}
