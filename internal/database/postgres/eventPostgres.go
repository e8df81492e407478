package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/entity"
)

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, title, description, host_name, category, duration_min,
		price_minor, currency, timezone, image_url, rating_avg, rating_count, created_at`

func scanEvent(row interface{ Scan(...interface{}) error }, event *entity.Event) error {
	return row.Scan(
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
}

// Create inserts the event together with its initial slots in one transaction
func (r *eventRepository) Create(ctx context.Context, event *entity.Event, slots []*entity.Slot) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (id, title, description, host_name, category, duration_min,
			price_minor, currency, timezone, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.HostName,
		event.Category,
		event.DurationMin,
		event.PriceMinor,
		event.Currency,
		event.Timezone,
		event.ImageURL,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %v", err)
	}
	event.CreatedAt = now

	for _, slot := range slots {
		query = `
			INSERT INTO slots (id, event_id, start_utc, max_bookings, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		_, err = tx.ExecContext(ctx, query, slot.ID, event.ID, slot.StartUTC, slot.MaxBookings, now)
		if err != nil {
			if isUniqueViolation(err, "uq_slots_event_start") {
				return entity.ErrSlotAlreadyExists
			}
			return fmt.Errorf("failed to create slot: %v", err)
		}
		slot.EventID = event.ID
		slot.CreatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*entity.EventWithSlots, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var event entity.EventWithSlots
	err := scanEvent(r.db.QueryRowContext(ctx, query, id), &event.Event)
	if err == sql.ErrNoRows {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %v", err)
	}

	query = `
		SELECT
			s.id, s.event_id, s.start_utc, s.max_bookings, s.created_at,
			COALESCE(COUNT(b.id) FILTER (WHERE b.status = 'CONFIRMED'), 0) as booked_count
		FROM slots s
		LEFT JOIN bookings b ON b.slot_id = s.id
		WHERE s.event_id = $1
		GROUP BY s.id
		ORDER BY s.start_utc ASC
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query event slots: %v", err)
	}
	defer rows.Close()

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
		event.Slots = append(event.Slots, &slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %v", err)
	}

	return &event, nil
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, host_name = $3, category = $4,
		    duration_min = $5, price_minor = $6, currency = $7, timezone = $8, image_url = $9
		WHERE id = $10
	`

	result, err := r.db.ExecContext(ctx, query,
		event.Title,
		event.Description,
		event.HostName,
		event.Category,
		event.DurationMin,
		event.PriceMinor,
		event.Currency,
		event.Timezone,
		event.ImageURL,
		event.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}

// Delete removes the event; slots, their bookings and reviews go with it
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}

// buildSearchQuery assembles the filtered listing query and its count twin.
// Search is a case-insensitive substring match across title, description and
// host name; popularity counts confirmed bookings inside the recent window.
func buildSearchQuery(filter *SearchFilter, now time.Time) (string, string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern)
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(e.title ILIKE $%d OR e.description ILIKE $%d OR e.host_name ILIKE $%d)", n, n, n))
	}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("e.category = $%d", len(args)))
	}

	if filter.PriceMin != nil {
		args = append(args, *filter.PriceMin)
		conditions = append(conditions, fmt.Sprintf("e.price_minor >= $%d", len(args)))
	}

	if filter.PriceMax != nil {
		args = append(args, *filter.PriceMax)
		conditions = append(conditions, fmt.Sprintf("e.price_minor <= $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM events e` + where

	join := ""
	var orderBy string
	switch filter.Sort {
	case SortPriceAsc:
		orderBy = "e.price_minor ASC, e.created_at DESC"
	case SortPriceDesc:
		orderBy = "e.price_minor DESC, e.created_at DESC"
	case SortRating:
		orderBy = "e.rating_avg DESC NULLS LAST, e.created_at DESC"
	case SortPopularity:
		windowDays := filter.WindowDays
		if windowDays <= 0 {
			windowDays = 30
		}
		args = append(args, now.AddDate(0, 0, -windowDays))
		join = fmt.Sprintf(`
		LEFT JOIN (
			SELECT s.event_id, COUNT(b.id) AS recent_bookings
			FROM slots s
			JOIN bookings b ON b.slot_id = s.id
			WHERE b.status = 'CONFIRMED' AND b.booked_at >= $%d
			GROUP BY s.event_id
		) p ON p.event_id = e.id`, len(args))
		orderBy = "COALESCE(p.recent_bookings, 0) DESC, e.created_at DESC"
	default:
		orderBy = "e.created_at DESC"
	}

	size := filter.Size
	page := filter.Page
	if page < 1 {
		page = 1
	}
	args = append(args, size)
	limitPos := len(args)
	args = append(args, (page-1)*size)
	offsetPos := len(args)

	query := fmt.Sprintf(`
		SELECT e.id, e.title, e.description, e.host_name, e.category, e.duration_min,
			e.price_minor, e.currency, e.timezone, e.image_url, e.rating_avg, e.rating_count, e.created_at
		FROM events e%s%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, join, where, orderBy, limitPos, offsetPos)

	return query, countQuery, args
}

func (r *eventRepository) Search(ctx context.Context, filter *SearchFilter) ([]*entity.Event, int, error) {
	query, countQuery, args := buildSearchQuery(filter, time.Now().UTC())

	// The count query uses only the filter arguments
	countArgs := args[:len(args)-2]
	if filter.Sort == SortPopularity {
		countArgs = countArgs[:len(countArgs)-1]
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %v", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search events: %v", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		var event entity.Event
		if err := scanEvent(rows, &event); err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %v", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating events: %v", err)
	}

	return events, total, nil
}

// RecomputeRating rebuilds the denormalized rating fields from reviews in a
// single statement, so concurrent review writes cannot leave drift behind
func (r *eventRepository) RecomputeRating(ctx context.Context, eventID string) error {
	query := `
		UPDATE events e
		SET rating_avg = agg.avg_rating, rating_count = agg.review_count
		FROM (
			SELECT AVG(rating)::float8 AS avg_rating, COUNT(*) AS review_count
			FROM reviews
			WHERE event_id = $1
		) agg
		WHERE e.id = $1
	`

	result, err := r.db.ExecContext(ctx, query, eventID)
	if err != nil {
		return fmt.Errorf("failed to recompute event rating: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}
