package postgres

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/ds124wfegd/eventmarket/config"

	_ "github.com/lib/pq"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	// Read migration files and execute them
	// This is a simplified version - you might want to use a proper migration tool
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			host_name VARCHAR(120) NOT NULL,
			category VARCHAR(32) NOT NULL,
			duration_min INTEGER NOT NULL,
			price_minor BIGINT NOT NULL DEFAULT 0,
			currency CHAR(3) NOT NULL DEFAULT 'USD',
			timezone VARCHAR(64) NOT NULL DEFAULT 'UTC',
			image_url TEXT,
			rating_avg DOUBLE PRECISION,
			rating_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS slots (
			id UUID PRIMARY KEY,
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			start_utc TIMESTAMPTZ NOT NULL,
			max_bookings INTEGER NOT NULL CHECK (max_bookings >= 1),
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT uq_slots_event_start UNIQUE (event_id, start_utc)
		)`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id UUID PRIMARY KEY,
			slot_id UUID NOT NULL REFERENCES slots(id) ON DELETE CASCADE,
			name VARCHAR(120) NOT NULL,
			email VARCHAR(254) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'CONFIRMED',
			booked_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// A cancelled booking frees the (slot, email) pair for re-booking,
		// so uniqueness holds for confirmed bookings only
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_bookings_slot_email
			ON bookings(slot_id, email) WHERE status = 'CONFIRMED'`,

		`CREATE TABLE IF NOT EXISTS reviews (
			id UUID PRIMARY KEY,
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			booking_id UUID NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment VARCHAR(2000),
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT uq_reviews_booking UNIQUE (booking_id)
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_slots_event_id ON slots(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_slot_id ON bookings(slot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_email ON bookings(email)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status_booked_at ON bookings(status, booked_at)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_event_id ON reviews(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_category ON events(category)`,
		`CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %v", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
