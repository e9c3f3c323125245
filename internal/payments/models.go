package payments

import (
	"fmt"
	"time"

	"ticketing/internal/shared/apperrors"
	"ticketing/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrPaymentNotFound = fmt.Errorf("payment %w", apperrors.ErrNotFound)

// Payment links a buyer's reservation to the provider's payment intent. It is
// created unfinalized when checkout starts and finalized once the provider
// confirms the charge.
type Payment struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	TicketID    uuid.UUID    `gorm:"type:uuid;not null;index:idx_payments_open_ticket,unique,where:finalized_at IS NULL" json:"ticket_id"`
	ProviderRef string       `gorm:"type:varchar(255);not null;index" json:"provider_ref"`
	Price       money.Amount `gorm:"column:price_cents;not null" json:"price"`
	Currency    string       `gorm:"type:varchar(3);not null;default:'usd'" json:"currency"`
	CreatedAt   time.Time    `json:"created_at"`
	FinalizedAt *time.Time   `json:"finalized_at,omitempty"`
}

// TableName sets the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Payment) IsFinalized() bool {
	return p.FinalizedAt != nil
}
