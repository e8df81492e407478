package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/entity"
)

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a review after verifying the booking inside a transaction:
// the booking must exist, belong to a slot of the event, be CONFIRMED and
// have no review yet. The unique constraint on booking_id is the backstop.
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	var status entity.BookingStatus
	var slotEventID string
	query := `
		SELECT b.status, s.event_id
		FROM bookings b
		JOIN slots s ON s.id = b.slot_id
		WHERE b.id = $1
		FOR UPDATE OF b
	`
	err = tx.QueryRowContext(ctx, query, review.BookingID).Scan(&status, &slotEventID)
	if err == sql.ErrNoRows {
		return entity.ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get booking for review: %v", err)
	}

	if slotEventID != review.EventID {
		return entity.ErrReviewWrongEvent
	}
	if status != entity.BookingStatusConfirmed {
		return entity.ErrBookingNotConfirmed
	}

	var existing int
	query = `SELECT COUNT(*) FROM reviews WHERE booking_id = $1`
	if err := tx.QueryRowContext(ctx, query, review.BookingID).Scan(&existing); err != nil {
		return fmt.Errorf("failed to check existing review: %v", err)
	}
	if existing > 0 {
		return entity.ErrReviewAlreadyExists
	}

	now := time.Now().UTC()
	query = `
		INSERT INTO reviews (id, event_id, booking_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, query,
		review.ID,
		review.EventID,
		review.BookingID,
		review.Rating,
		review.Comment,
		now,
	)
	if err != nil {
		if isUniqueViolation(err, "uq_reviews_booking") {
			return entity.ErrReviewAlreadyExists
		}
		return fmt.Errorf("failed to create review: %v", err)
	}

	review.CreatedAt = now

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	query := `
		SELECT id, event_id, booking_id, rating, comment, created_at
		FROM reviews
		WHERE id = $1
	`

	var review entity.Review
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&review.ID,
		&review.EventID,
		&review.BookingID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %v", err)
	}

	return &review, nil
}

func (r *reviewRepository) GetByEventID(ctx context.Context, eventID string, limit, offset int) ([]*entity.Review, int, error) {
	var total int
	query := `SELECT COUNT(*) FROM reviews WHERE event_id = $1`
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %v", err)
	}

	query = `
		SELECT id, event_id, booking_id, rating, comment, created_at
		FROM reviews
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, eventID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reviews: %v", err)
	}
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		var review entity.Review
		err := rows.Scan(
			&review.ID,
			&review.EventID,
			&review.BookingID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %v", err)
		}
		reviews = append(reviews, &review)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating reviews: %v", err)
	}

	return reviews, total, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	query := `
		UPDATE reviews
		SET rating = $1, comment = $2
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, review.Rating, review.Comment, review.ID)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrReviewNotFound
	}

	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM reviews WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrReviewNotFound
	}

	return nil
}
