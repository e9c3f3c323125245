package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketing/internal/shared/apperrors"
	"ticketing/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const createBatchSize = 500

type Repository interface {
	// Inventory setup
	CreateBulk(ctx context.Context, eventID uuid.UUID, price money.Amount, ticketType Type, quantity int) ([]Ticket, error)

	// Lookups
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	FindAvailable(ctx context.Context, eventID uuid.UUID, ticketType Type, price money.Amount) (*Ticket, error)
	SummaryByEvent(ctx context.Context, eventID uuid.UUID) ([]Summary, error)

	// Conditional status transitions. Each is a single UPDATE guarded by the
	// expected current status and reports whether this call made the change.
	TryReserve(ctx context.Context, ticketID, buyerID uuid.UUID) (bool, error)
	TrySettle(ctx context.Context, ticketID uuid.UUID) (bool, error)
	Release(ctx context.Context, ticketID, buyerID uuid.UUID) (bool, error)
}

type repository struct {
	db       *gorm.DB
	currency string
}

// NewRepository returns a ticket store. New tickets are priced in currency.
func NewRepository(db *gorm.DB, currency string) Repository {
	if currency == "" {
		currency = money.DefaultCurrency
	}
	return &repository{db: db, currency: currency}
}

// INVENTORY SETUP

func (r *repository) CreateBulk(ctx context.Context, eventID uuid.UUID, price money.Amount, ticketType Type, quantity int) ([]Ticket, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d: %w", quantity, apperrors.ErrInvalidInput)
	}
	if !ticketType.IsValid() {
		return nil, fmt.Errorf("unknown ticket type %q: %w", ticketType, apperrors.ErrInvalidInput)
	}
	if price < 0 {
		return nil, fmt.Errorf("price must not be negative: %w", apperrors.ErrInvalidInput)
	}

	tickets := make([]Ticket, quantity)
	for i := range tickets {
		tickets[i] = Ticket{
			EventID:  eventID,
			Price:    price,
			Currency: r.currency,
			Type:     ticketType,
			Status:   StatusAvailable,
		}
	}

	// CreateInBatches runs every batch in one transaction
	if err := r.db.WithContext(ctx).CreateInBatches(&tickets, createBatchSize).Error; err != nil {
		return nil, apperrors.Store("create tickets", err)
	}
	return tickets, nil
}

// LOOKUPS

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).First(&ticket, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, apperrors.Store("get ticket", err)
	}
	return &ticket, nil
}

// FindAvailable returns any AVAILABLE ticket matching the filter, or nil when
// none is left. The result is only a candidate: another buyer may reserve it
// before the caller does.
func (r *repository) FindAvailable(ctx context.Context, eventID uuid.UUID, ticketType Type, price money.Amount) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND type = ? AND price_cents = ? AND status = ?", eventID, ticketType, price, StatusAvailable).
		Take(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Store("find available ticket", err)
	}
	return &ticket, nil
}

func (r *repository) SummaryByEvent(ctx context.Context, eventID uuid.UUID) ([]Summary, error) {
	var summaries []Summary
	err := r.db.WithContext(ctx).
		Model(&Ticket{}).
		Select(`type, price_cents AS price,
			COUNT(CASE WHEN status = ? THEN 1 END) AS available,
			COUNT(CASE WHEN status = ? THEN 1 END) AS reserved,
			COUNT(CASE WHEN status = ? THEN 1 END) AS sold`,
			StatusAvailable, StatusReserved, StatusSold).
		Where("event_id = ?", eventID).
		Group("type, price_cents").
		Order("type ASC, price_cents ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, apperrors.Store("summarize tickets", err)
	}
	return summaries, nil
}

// STATUS TRANSITIONS

func (r *repository) TryReserve(ctx context.Context, ticketID, buyerID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("id = ? AND status = ?", ticketID, StatusAvailable).
		Updates(map[string]interface{}{
			"status":  StatusReserved,
			"user_id": buyerID,
		})
	if result.Error != nil {
		return false, apperrors.Store("reserve ticket", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) TrySettle(ctx context.Context, ticketID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("id = ? AND status = ?", ticketID, StatusReserved).
		Updates(map[string]interface{}{
			"status":       StatusSold,
			"purchased_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, apperrors.Store("settle ticket", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Release puts a reservation held by buyerID back on sale. It never touches a
// SOLD ticket or a reservation owned by someone else.
func (r *repository) Release(ctx context.Context, ticketID, buyerID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("id = ? AND status = ? AND user_id = ?", ticketID, StatusReserved, buyerID).
		Updates(map[string]interface{}{
			"status":       StatusAvailable,
			"user_id":      nil,
			"purchased_at": nil,
		})
	if result.Error != nil {
		return false, apperrors.Store("release ticket", result.Error)
	}
	return result.RowsAffected == 1, nil
}
