package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/entity"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// Create creates a new booking with transaction to ensure data consistency.
// The slot row is locked so concurrent requests for the same slot serialize;
// the partial unique index on (slot_id, email) is the backstop.
func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	// Lock the slot row for the duration of the check-then-insert
	var maxBookings int
	query := `SELECT max_bookings FROM slots WHERE id = $1 FOR UPDATE`
	err = tx.QueryRowContext(ctx, query, booking.SlotID).Scan(&maxBookings)
	if err == sql.ErrNoRows {
		return entity.ErrSlotNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock slot: %v", err)
	}

	// Check confirmed occupancy
	var confirmedCount int
	query = `SELECT COUNT(*) FROM bookings WHERE slot_id = $1 AND status = 'CONFIRMED'`
	err = tx.QueryRowContext(ctx, query, booking.SlotID).Scan(&confirmedCount)
	if err != nil {
		return fmt.Errorf("failed to check confirmed bookings: %v", err)
	}
	if confirmedCount >= maxBookings {
		return entity.ErrSlotFull
	}

	// Check if this email already holds a confirmed booking for the slot
	var existingCount int
	query = `SELECT COUNT(*) FROM bookings WHERE slot_id = $1 AND email = $2 AND status = 'CONFIRMED'`
	err = tx.QueryRowContext(ctx, query, booking.SlotID, booking.Email).Scan(&existingCount)
	if err != nil {
		return fmt.Errorf("failed to check existing bookings: %v", err)
	}
	if existingCount > 0 {
		return entity.ErrDuplicateBooking
	}

	now := time.Now().UTC()
	query = `
		INSERT INTO bookings (id, slot_id, name, email, status, booked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, query,
		booking.ID,
		booking.SlotID,
		booking.Name,
		booking.Email,
		entity.BookingStatusConfirmed,
		now,
	)
	if err != nil {
		if isUniqueViolation(err, "uq_bookings_slot_email") {
			return entity.ErrDuplicateBooking
		}
		return fmt.Errorf("failed to create booking: %v", err)
	}

	booking.Status = entity.BookingStatusConfirmed
	booking.BookedAt = now

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// GetByID retrieves a booking by its ID
func (r *bookingRepository) GetByID(ctx context.Context, id string) (*entity.Booking, error) {
	query := `
		SELECT id, slot_id, name, email, status, booked_at
		FROM bookings
		WHERE id = $1
	`

	var booking entity.Booking
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.SlotID,
		&booking.Name,
		&booking.Email,
		&booking.Status,
		&booking.BookedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %v", err)
	}

	return &booking, nil
}

// GetByEmail retrieves bookings for an email, newest first
func (r *bookingRepository) GetByEmail(ctx context.Context, email string, limit, offset int) ([]*entity.Booking, int, error) {
	var total int
	query := `SELECT COUNT(*) FROM bookings WHERE email = $1`
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings by email: %v", err)
	}

	query = `
		SELECT id, slot_id, name, email, status, booked_at
		FROM bookings
		WHERE email = $1
		ORDER BY booked_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, email, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query bookings by email: %v", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.SlotID,
			&booking.Name,
			&booking.Email,
			&booking.Status,
			&booking.BookedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %v", err)
		}
		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating bookings: %v", err)
	}

	return bookings, total, nil
}

// Cancel marks the booking cancelled. The row is locked for the check, so of
// two concurrent cancels exactly one observes the CONFIRMED to CANCELLED
// transition; the second caller gets transitioned=false.
func (r *bookingRepository) Cancel(ctx context.Context, id string) (*entity.Booking, bool, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	var booking entity.Booking
	query := `
		SELECT id, slot_id, name, email, status, booked_at
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`
	err = tx.QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.SlotID,
		&booking.Name,
		&booking.Email,
		&booking.Status,
		&booking.BookedAt,
	)
	if err == sql.ErrNoRows {
		return nil, false, entity.ErrBookingNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get booking for cancel: %v", err)
	}

	if booking.Status == entity.BookingStatusCancelled {
		return &booking, false, tx.Commit()
	}

	query = `UPDATE bookings SET status = $1 WHERE id = $2`
	if _, err := tx.ExecContext(ctx, query, entity.BookingStatusCancelled, id); err != nil {
		return nil, false, fmt.Errorf("failed to cancel booking: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %v", err)
	}

	booking.Status = entity.BookingStatusCancelled
	return &booking, true, nil
}

// GetDetails loads the booking together with its slot and event
func (r *bookingRepository) GetDetails(ctx context.Context, id string) (*entity.BookingDetails, error) {
	query := `
		SELECT
			b.id, b.slot_id, b.name, b.email, b.status, b.booked_at,
			s.id, s.event_id, s.start_utc, s.max_bookings, s.created_at,
			e.id, e.title, e.description, e.host_name, e.category, e.duration_min,
			e.price_minor, e.currency, e.timezone, e.image_url, e.rating_avg, e.rating_count, e.created_at
		FROM bookings b
		JOIN slots s ON s.id = b.slot_id
		JOIN events e ON e.id = s.event_id
		WHERE b.id = $1
	`

	var booking entity.Booking
	var slot entity.Slot
	var event entity.Event
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.SlotID,
		&booking.Name,
		&booking.Email,
		&booking.Status,
		&booking.BookedAt,
		&slot.ID,
		&slot.EventID,
		&slot.StartUTC,
		&slot.MaxBookings,
		&slot.CreatedAt,
		&event.ID,
		&event.Title,
		&event.Description,
		&event.HostName,
		&event.Category,
		&event.DurationMin,
		&event.PriceMinor,
		&event.Currency,
		&event.Timezone,
		&event.ImageURL,
		&event.RatingAvg,
		&event.RatingCount,
		&event.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking details: %v", err)
	}

	return &entity.BookingDetails{
		Booking: &booking,
		Slot:    &slot,
		Event:   &event,
	}, nil
}
