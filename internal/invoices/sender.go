package invoices

import (
	"context"
	"fmt"

	"ticketing/internal/payments"
	"ticketing/internal/tickets"
	"ticketing/internal/users"
	"ticketing/pkg/logger"
)

// Sender renders and mails one invoice, then marks it sent. Sending an invoice
// that is already marked does nothing.
type Sender struct {
	invoices Repository
	tickets  tickets.Repository
	payments payments.Repository
	users    users.Directory
	mailer   Mailer
	logger   *logger.Logger
}

func NewSender(invoiceRepo Repository, ticketRepo tickets.Repository, paymentRepo payments.Repository, directory users.Directory, mailer Mailer) *Sender {
	return &Sender{
		invoices: invoiceRepo,
		tickets:  ticketRepo,
		payments: paymentRepo,
		users:    directory,
		mailer:   mailer,
		logger:   logger.GetDefault().WithComponent("invoices"),
	}
}

func (s *Sender) Send(ctx context.Context, req *Request) error {
	invoice, err := s.invoices.GetByPaymentID(ctx, req.PaymentID)
	if err != nil {
		return err
	}
	if invoice.IsSent() {
		s.logger.DebugContext(ctx, "Invoice already sent", "invoice_id", invoice.ID.String())
		return nil
	}

	payment, err := s.payments.GetByID(ctx, req.PaymentID)
	if err != nil {
		return err
	}
	if payment.TicketID != req.TicketID {
		return fmt.Errorf("payment %s is for ticket %s, not %s", payment.ID, payment.TicketID, req.TicketID)
	}
	ticket, err := s.tickets.GetByID(ctx, payment.TicketID)
	if err != nil {
		return err
	}
	buyer, err := s.users.GetByID(ctx, payment.UserID)
	if err != nil {
		return err
	}

	msg, err := render(invoice, ticket, payment, buyer)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return err
	}

	if _, err := s.invoices.MarkSent(ctx, invoice.ID); err != nil {
		// The mail went out; a retry may send it again.
		return err
	}
	s.logger.InfoContext(ctx, "Invoice sent",
		"invoice_id", invoice.ID.String(),
		"payment_id", payment.ID.String(),
		"ticket_id", ticket.ID.String(),
	)
	return nil
}
