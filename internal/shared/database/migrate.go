package database

import (
	"ticketing/internal/invoices"
	"ticketing/internal/payments"
	"ticketing/internal/tickets"
	"ticketing/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&users.User{},
		&tickets.Ticket{},
		&payments.Payment{},
		&invoices.Invoice{},
	)
	if err != nil {
		return err
	}
	return MigrateConstraints(db)
}
