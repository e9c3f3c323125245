package invoices

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"ticketing/internal/payments"
	"ticketing/internal/tickets"
	"ticketing/internal/users"
)

const htmlInvoice = `<h2>Your ticket receipt</h2>
<p>Hi {{.BuyerName}},</p>
<p>Thanks for your purchase. Your ticket is confirmed.</p>
<table>
  <tr><td>Invoice</td><td>{{.InvoiceID}}</td></tr>
  <tr><td>Ticket</td><td>{{.TicketID}} ({{.TicketType}})</td></tr>
  <tr><td>Event</td><td>{{.EventID}}</td></tr>
  <tr><td>Amount paid</td><td>{{.Price}} {{.Currency}}</td></tr>
  <tr><td>Paid at</td><td>{{.PaidAt}}</td></tr>
</table>
<p>Keep this e-mail as proof of purchase.</p>`

const textInvoice = `Hi {{.BuyerName}},

Thanks for your purchase. Your ticket is confirmed.

Invoice:     {{.InvoiceID}}
Ticket:      {{.TicketID}} ({{.TicketType}})
Event:       {{.EventID}}
Amount paid: {{.Price}} {{.Currency}}
Paid at:     {{.PaidAt}}

Keep this e-mail as proof of purchase.`

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.New("invoice").Parse(htmlInvoice))
	textTemplate = texttemplate.Must(texttemplate.New("invoice").Parse(textInvoice))
)

type view struct {
	BuyerName  string
	InvoiceID  string
	TicketID   string
	TicketType string
	EventID    string
	Price      string
	Currency   string
	PaidAt     string
}

func render(invoice *Invoice, ticket *tickets.Ticket, payment *payments.Payment, buyer *users.User) (Message, error) {
	paidAt := payment.CreatedAt
	if payment.FinalizedAt != nil {
		paidAt = *payment.FinalizedAt
	}
	if ticket.PurchasedAt != nil {
		paidAt = *ticket.PurchasedAt
	}

	v := view{
		BuyerName:  strings.TrimSpace(buyer.FullName()),
		InvoiceID:  invoice.ID.String(),
		TicketID:   ticket.ID.String(),
		TicketType: ticket.Type.String(),
		EventID:    ticket.EventID.String(),
		Price:      payment.Price.String(),
		Currency:   strings.ToUpper(payment.Currency),
		PaidAt:     paidAt.UTC().Format(time.RFC1123),
	}
	if v.BuyerName == "" {
		v.BuyerName = buyer.Email
	}

	var html, text bytes.Buffer
	if err := htmlTemplate.Execute(&html, v); err != nil {
		return Message{}, fmt.Errorf("render html invoice: %w", err)
	}
	if err := textTemplate.Execute(&text, v); err != nil {
		return Message{}, fmt.Errorf("render text invoice: %w", err)
	}

	return Message{
		To:      buyer.Email,
		Subject: fmt.Sprintf("Your receipt for ticket %s", ticket.ID.String()[:8]),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
