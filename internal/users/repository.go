package users

import (
	"context"
	"errors"
	"fmt"

	"ticketing/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Directory resolves buyer contact details for invoice delivery.
type Directory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type repository struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) Directory {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Select("id", "first_name", "last_name", "email", "role").
		Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, apperrors.Store("get user", err)
	}
	return &user, nil
}
