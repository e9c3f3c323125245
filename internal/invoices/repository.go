package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketing/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, paymentID uuid.UUID) (*Invoice, error)
	GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*Invoice, error)
	MarkSent(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create returns the payment's invoice, inserting it on first use. Calling it
// again for the same payment returns the existing row.
func (r *repository) Create(ctx context.Context, paymentID uuid.UUID) (*Invoice, error) {
	invoice := &Invoice{PaymentID: paymentID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "payment_id"}}, DoNothing: true}).
		Create(invoice)
	if result.Error != nil {
		return nil, apperrors.Store("create invoice", result.Error)
	}
	if result.RowsAffected == 1 {
		return invoice, nil
	}
	return r.GetByPaymentID(ctx, paymentID)
}

func (r *repository) GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*Invoice, error) {
	var invoice Invoice
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w for payment %s", ErrInvoiceNotFound, paymentID)
		}
		return nil, apperrors.Store("get invoice", err)
	}
	return &invoice, nil
}

// MarkSent stamps sent_at once. It reports false when the invoice was already
// marked.
func (r *repository) MarkSent(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Invoice{}).
		Where("id = ? AND sent_at IS NULL", id).
		Update("sent_at", time.Now().UTC())
	if result.Error != nil {
		return false, apperrors.Store("mark invoice sent", result.Error)
	}
	return result.RowsAffected == 1, nil
}
