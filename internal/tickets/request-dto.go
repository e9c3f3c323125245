package tickets

import "ticketing/pkg/money"

type CreateTicketsRequest struct {
	EventID  string       `json:"event_id" binding:"required,uuid"`
	Price    money.Amount `json:"price" binding:"required" swaggertype:"string" example:"50.00"`
	Type     string       `json:"type" binding:"required,ticket_type" example:"STANDARD"`
	Quantity int          `json:"quantity" binding:"required,min=1,max=10000"`
}

// AvailableTicketQuery is bound from the query string
type AvailableTicketQuery struct {
	EventID string `form:"event_id" binding:"required,uuid"`
	Price   string `form:"price" binding:"required"`
	Type    string `form:"type" binding:"required,ticket_type"`
}
