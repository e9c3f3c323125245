package tickets

import (
	"time"

	"ticketing/pkg/money"
)

// TicketResponse is the public view of a ticket. The holder is not exposed.
type TicketResponse struct {
	ID          string       `json:"id"`
	EventID     string       `json:"event_id"`
	Price       money.Amount `json:"price" swaggertype:"string"`
	Currency    string       `json:"currency"`
	Type        Type         `json:"type"`
	Status      Status       `json:"status"`
	PurchasedAt *time.Time   `json:"purchased_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

type CreateTicketsResponse struct {
	EventID   string       `json:"event_id"`
	Type      string       `json:"type"`
	Price     money.Amount `json:"price" swaggertype:"string"`
	Currency  string       `json:"currency"`
	Quantity  int          `json:"quantity"`
	TicketIDs []string     `json:"ticket_ids"`
}

type EventSummaryResponse struct {
	EventID        string    `json:"event_id"`
	TotalAvailable int64     `json:"total_available"`
	Tiers          []Summary `json:"tiers"`
}

func (t *Ticket) ToResponse() TicketResponse {
	return TicketResponse{
		ID:          t.ID.String(),
		EventID:     t.EventID.String(),
		Price:       t.Price,
		Currency:    t.Currency,
		Type:        t.Type,
		Status:      t.Status,
		PurchasedAt: t.PurchasedAt,
		CreatedAt:   t.CreatedAt,
	}
}
