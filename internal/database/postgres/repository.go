package repository

import (
	"context"

	"github.com/ds124wfegd/eventmarket/internal/entity"
)

// Sort modes supported by the event search
const (
	SortRecent     = "recent"
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortRating     = "rating"
	SortPopularity = "popularity"
)

// SearchFilter describes the event listing query
type SearchFilter struct {
	Query      string
	Category   entity.Category
	PriceMin   *int64
	PriceMax   *int64
	Sort       string
	Page       int
	Size       int
	WindowDays int
}

type EventRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, event *entity.Event, slots []*entity.Slot) error
	GetByID(ctx context.Context, id string) (*entity.EventWithSlots, error)
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id string) error

	// Search returns a page of events plus the total match count
	Search(ctx context.Context, filter *SearchFilter) ([]*entity.Event, int, error)

	// Rating aggregate, recomputed in full from reviews
	RecomputeRating(ctx context.Context, eventID string) error
}

type SlotRepository interface {
	Create(ctx context.Context, slot *entity.Slot) error
	GetByID(ctx context.Context, id string) (*entity.Slot, error)
	GetByEventID(ctx context.Context, eventID string) ([]*entity.SlotWithOccupancy, error)
	GetOccupancy(ctx context.Context, slotID string) (*entity.SlotWithOccupancy, error)
}

type BookingRepository interface {
	// Create enforces capacity and (slot, email) uniqueness in one transaction
	Create(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id string) (*entity.Booking, error)
	GetByEmail(ctx context.Context, email string, limit, offset int) ([]*entity.Booking, int, error)

	// Cancel reports whether a CONFIRMED to CANCELLED transition actually
	// happened; the row is locked so only one concurrent cancel observes it
	Cancel(ctx context.Context, id string) (*entity.Booking, bool, error)

	GetDetails(ctx context.Context, id string) (*entity.BookingDetails, error)
}

type ReviewRepository interface {
	// Create enforces one review per booking inside a transaction
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	GetByEventID(ctx context.Context, eventID string, limit, offset int) ([]*entity.Review, int, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id string) error
}
