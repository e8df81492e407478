package entity

import (
	"time"
)

type Slot struct {
	ID          string    `json:"id" db:"id"`
	EventID     string    `json:"event_id" db:"event_id"`
	StartUTC    time.Time `json:"start_utc" db:"start_utc"`
	MaxBookings int       `json:"max_bookings" db:"max_bookings"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type SlotWithOccupancy struct {
	Slot
	BookedCount int  `json:"booked_count"`
	Remaining   int  `json:"remaining"`
	IsFull      bool `json:"is_full"`
}

// FillOccupancy пересчитывает производные поля по числу подтвержденных броней
func (s *SlotWithOccupancy) FillOccupancy(bookedCount int) {
	s.BookedCount = bookedCount
	s.Remaining = s.MaxBookings - bookedCount
	if s.Remaining < 0 {
		s.Remaining = 0
	}
	s.IsFull = bookedCount >= s.MaxBookings
}
