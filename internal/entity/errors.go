package entity

import "errors"

var (
	// Event errors
	ErrEventNotFound   = errors.New("event not found")
	ErrInvalidCategory = errors.New("unknown event category")

	// Slot errors
	ErrSlotNotFound      = errors.New("slot not found")
	ErrSlotAlreadyExists = errors.New("slot with this start time already exists")
	ErrSlotFull          = errors.New("slot is fully booked")

	// Booking errors
	ErrBookingNotFound     = errors.New("booking not found")
	ErrDuplicateBooking    = errors.New("booking for this slot and email already exists")
	ErrBookingCancelled    = errors.New("booking is already cancelled")
	ErrBookingNotConfirmed = errors.New("booking is not confirmed")

	// Review errors
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("review for this booking already exists")
	ErrReviewWrongEvent    = errors.New("booking does not belong to this event")

	// Currency errors
	ErrMissingRate = errors.New("missing currency rate")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidSort  = errors.New("unknown sort mode")
)
