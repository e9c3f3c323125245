package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds indexes the model tags cannot express. Every
// statement is valid on both PostgreSQL and SQLite.
func MigrateConstraints(db *gorm.DB) error {
	// Availability lookups only ever scan AVAILABLE rows
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_available_lookup
		ON tickets (event_id, type, price_cents)
		WHERE status = 'AVAILABLE';
	`).Error
	if err != nil {
		return err
	}

	// Per-event summaries group by type and price
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_event_summary
		ON tickets (event_id, status, type, price_cents);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
