package tickets

import (
	"fmt"
	"time"

	"ticketing/internal/shared/apperrors"
	"ticketing/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTicketNotFound = fmt.Errorf("ticket %w", apperrors.ErrNotFound)

// Ticket is one admission to an event. Status only moves forward
// AVAILABLE -> RESERVED -> SOLD, except a reservation released when the
// payment could not be started.
type Ticket struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	EventID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"event_id"`
	Price       money.Amount `gorm:"column:price_cents;not null;check:chk_tickets_price,price_cents >= 0" json:"price"`
	Currency    string       `gorm:"type:varchar(3);not null;default:'usd'" json:"currency"`
	Type        Type         `gorm:"type:varchar(20);not null" json:"type"`
	Status      Status       `gorm:"type:varchar(20);not null;default:'AVAILABLE';check:chk_tickets_status,status IN ('AVAILABLE', 'RESERVED', 'SOLD')" json:"status"`
	UserID      *uuid.UUID   `gorm:"type:uuid;index;check:chk_tickets_owner,(status = 'AVAILABLE' AND user_id IS NULL AND purchased_at IS NULL) OR (status <> 'AVAILABLE' AND user_id IS NOT NULL)" json:"user_id,omitempty"`
	PurchasedAt *time.Time   `json:"purchased_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TableName sets the table name for Ticket
func (Ticket) TableName() string {
	return "tickets"
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Summary is the availability of one (type, price) tier of an event.
type Summary struct {
	Type      Type         `json:"type"`
	Price     money.Amount `json:"price"`
	Available int64        `json:"available"`
	Reserved  int64        `json:"reserved"`
	Sold      int64        `json:"sold"`
}
