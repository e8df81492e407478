package entity

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID       string        `json:"id" db:"id"`
	SlotID   string        `json:"slot_id" db:"slot_id"`
	Name     string        `json:"name" db:"name"`
	Email    string        `json:"email" db:"email"`
	Status   BookingStatus `json:"status" db:"status"`
	BookedAt time.Time     `json:"booked_at" db:"booked_at"`
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// BookingDetails объединяет бронь с мероприятием и слотом для писем и календаря
type BookingDetails struct {
	Booking *Booking `json:"booking"`
	Slot    *Slot    `json:"slot"`
	Event   *Event   `json:"event"`
}
