package invoices

import (
	"encoding/json"
	"fmt"
	"time"

	"ticketing/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvoiceNotFound = fmt.Errorf("invoice %w", apperrors.ErrNotFound)

// Invoice records that a settled payment is owed a receipt. SentAt stays nil
// until the e-mail has gone out.
type Invoice struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"payment_id"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

func (Invoice) TableName() string {
	return "invoices"
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *Invoice) IsSent() bool {
	return i.SentAt != nil
}

// Request is the message published for every invoice that needs sending.
type Request struct {
	InvoiceID   uuid.UUID `json:"invoice_id"`
	PaymentID   uuid.UUID `json:"payment_id"`
	TicketID    uuid.UUID `json:"ticket_id"`
	RequestedAt time.Time `json:"requested_at"`
}

func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode invoice request: %w", err)
	}
	if req.PaymentID == uuid.Nil || req.TicketID == uuid.Nil {
		return nil, fmt.Errorf("invoice request missing ids: %w", apperrors.ErrInvalidInput)
	}
	return &req, nil
}
