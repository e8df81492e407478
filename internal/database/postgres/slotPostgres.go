package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/entity"
)

type slotRepository struct {
	db *sql.DB
}

func NewSlotRepository(db *sql.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) Create(ctx context.Context, slot *entity.Slot) error {
	// The event must exist; FK violation would surface as a generic error,
	// so check explicitly to return a domain error
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`
	if err := r.db.QueryRowContext(ctx, query, slot.EventID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check event: %v", err)
	}
	if !exists {
		return entity.ErrEventNotFound
	}

	now := time.Now().UTC()
	query = `
		INSERT INTO slots (id, event_id, start_utc, max_bookings, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, slot.ID, slot.EventID, slot.StartUTC, slot.MaxBookings, now)
	if err != nil {
		if isUniqueViolation(err, "uq_slots_event_start") {
			return entity.ErrSlotAlreadyExists
		}
		return fmt.Errorf("failed to create slot: %v", err)
	}

	slot.CreatedAt = now
	return nil
}

func (r *slotRepository) GetByID(ctx context.Context, id string) (*entity.Slot, error) {
	query := `
		SELECT id, event_id, start_utc, max_bookings, created_at
		FROM slots
		WHERE id = $1
	`

	var slot entity.Slot
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&slot.ID,
		&slot.EventID,
		&slot.StartUTC,
		&slot.MaxBookings,
		&slot.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %v", err)
	}

	return &slot, nil
}

func (r *slotRepository) GetByEventID(ctx context.Context, eventID string) ([]*entity.SlotWithOccupancy, error) {
	query := `
		SELECT
			s.id, s.event_id, s.start_utc, s.max_bookings, s.created_at,
			COALESCE(COUNT(b.id) FILTER (WHERE b.status = 'CONFIRMED'), 0) as booked_count
		FROM slots s
		LEFT JOIN bookings b ON b.slot_id = s.id
		WHERE s.event_id = $1
		GROUP BY s.id
		ORDER BY s.start_utc ASC
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots by event: %v", err)
	}
	defer rows.Close()

	var slots []*entity.SlotWithOccupancy
	for rows.Next() {
		var slot entity.SlotWithOccupancy
		var bookedCount int
		err := rows.Scan(
			&slot.ID,
			&slot.EventID,
			&slot.StartUTC,
			&slot.MaxBookings,
			&slot.CreatedAt,
			&bookedCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %v", err)
		}
		slot.FillOccupancy(bookedCount)
		slots = append(slots, &slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %v", err)
	}

	return slots, nil
}

func (r *slotRepository) GetOccupancy(ctx context.Context, slotID string) (*entity.SlotWithOccupancy, error) {
	query := `
		SELECT
			s.id, s.event_id, s.start_utc, s.max_bookings, s.created_at,
			COALESCE(COUNT(b.id) FILTER (WHERE b.status = 'CONFIRMED'), 0) as booked_count
		FROM slots s
		LEFT JOIN bookings b ON b.slot_id = s.id
		WHERE s.id = $1
		GROUP BY s.id
	`

	var slot entity.SlotWithOccupancy
	var bookedCount int
	err := r.db.QueryRowContext(ctx, query, slotID).Scan(
		&slot.ID,
		&slot.EventID,
		&slot.StartUTC,
		&slot.MaxBookings,
		&slot.CreatedAt,
		&bookedCount,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot occupancy: %v", err)
	}

	slot.FillOccupancy(bookedCount)
	return &slot, nil
}
