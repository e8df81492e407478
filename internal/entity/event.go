package entity

import (
	"time"
)

type Event struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	HostName    string    `json:"host_name" db:"host_name"`
	Category    Category  `json:"category" db:"category"`
	DurationMin int       `json:"duration_min" db:"duration_min"`
	PriceMinor  int64     `json:"price_minor" db:"price_minor"`
	Currency    string    `json:"currency" db:"currency"`
	Timezone    string    `json:"timezone" db:"timezone"`
	ImageURL    *string   `json:"image_url,omitempty" db:"image_url"`
	RatingAvg   *float64  `json:"rating_avg" db:"rating_avg"`
	RatingCount int       `json:"rating_count" db:"rating_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type EventWithSlots struct {
	Event
	Slots []*SlotWithOccupancy `json:"slots"`
}
