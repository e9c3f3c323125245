package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ticketing/internal/shared/apperrors"
	"ticketing/pkg/logger"
	"ticketing/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, buyerID, ticketID uuid.UUID, providerRef string, price money.Amount, currency string) (*Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByProviderRef(ctx context.Context, providerRef string) (*Payment, error)
	MarkFinalized(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db:     db,
		logger: logger.GetDefault().WithComponent("payments"),
	}
}

// Create inserts an unfinalized payment. Callers must hold the ticket's
// reservation first; the store itself only rejects a second open payment for
// the same ticket.
func (r *repository) Create(ctx context.Context, buyerID, ticketID uuid.UUID, providerRef string, price money.Amount, currency string) (*Payment, error) {
	if currency == "" {
		currency = money.DefaultCurrency
	}
	payment := &Payment{
		UserID:      buyerID,
		TicketID:    ticketID,
		ProviderRef: providerRef,
		Price:       price,
		Currency:    currency,
	}

	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("ticket %s already has an open payment: %w", ticketID, apperrors.ErrConflict)
		}
		return nil, apperrors.Store("create payment", err)
	}
	return payment, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, apperrors.Store("get payment", err)
	}
	return &payment, nil
}

// FindByProviderRef returns the payment created for a provider intent, or nil
// when the reference is unknown. References are unique per attempt; if more
// than one row matches, the oldest wins and the duplicate is logged.
func (r *repository) FindByProviderRef(ctx context.Context, providerRef string) (*Payment, error) {
	var matches []Payment
	err := r.db.WithContext(ctx).
		Where("provider_ref = ?", providerRef).
		Order("created_at ASC").
		Limit(2).
		Find(&matches).Error
	if err != nil {
		return nil, apperrors.Store("find payment by provider ref", err)
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
	default:
		r.logger.LogAnomaly(ctx, "multiple payments share a provider reference",
			slog.String("provider_ref", providerRef),
			slog.String("chosen_payment_id", matches[0].ID.String()),
			slog.String("other_payment_id", matches[1].ID.String()),
		)
	}
	return &matches[0], nil
}

// MarkFinalized stamps finalized_at once. It reports true only for the call
// that set it; later calls are no-ops.
func (r *repository) MarkFinalized(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("id = ? AND finalized_at IS NULL", id).
		Update("finalized_at", time.Now().UTC())
	if result.Error != nil {
		return false, apperrors.Store("finalize payment", result.Error)
	}
	return result.RowsAffected == 1, nil
}
