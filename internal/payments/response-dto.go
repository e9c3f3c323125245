package payments

import (
	"time"

	"ticketing/pkg/money"
)

type PaymentResponse struct {
	ID          string       `json:"id"`
	TicketID    string       `json:"ticket_id"`
	Price       money.Amount `json:"price" swaggertype:"string"`
	Currency    string       `json:"currency"`
	Status      string       `json:"status"` // PENDING or SETTLED
	CreatedAt   time.Time    `json:"created_at"`
	FinalizedAt *time.Time   `json:"finalized_at,omitempty"`
}

type PublishableKeyResponse struct {
	PublishableKey string `json:"publishable_key"`
}

func (p *Payment) ToResponse() PaymentResponse {
	status := "PENDING"
	if p.IsFinalized() {
		status = "SETTLED"
	}
	return PaymentResponse{
		ID:          p.ID.String(),
		TicketID:    p.TicketID.String(),
		Price:       p.Price,
		Currency:    p.Currency,
		Status:      status,
		CreatedAt:   p.CreatedAt,
		FinalizedAt: p.FinalizedAt,
	}
}
