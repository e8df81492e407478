package service

import (
	"context"

	"github.com/ds124wfegd/eventmarket/internal/entity"
)

// EventService определяет интерфейс для операций с мероприятиями
type EventService interface {
	// Основные операции
	CreateEvent(ctx context.Context, req *CreateEventRequest) (*entity.EventWithSlots, error)
	GetEvent(ctx context.Context, id string) (*entity.EventWithSlots, error)
	UpdateEvent(ctx context.Context, id string, req *UpdateEventRequest) (*entity.Event, error)
	DeleteEvent(ctx context.Context, id string) error

	// Слоты
	AddSlot(ctx context.Context, eventID string, req *AddSlotRequest) (*entity.Slot, error)

	// Поиск с фильтрами, сортировкой и пагинацией
	SearchEvents(ctx context.Context, filter *EventFilter) ([]*entity.Event, int, error)

	// Пересчет рейтинга, вызывается после изменений отзывов и из очереди
	RecomputeRating(ctx context.Context, eventID string) error
}

// BookingService определяет интерфейс для операций с бронированиями
type BookingService interface {
	CreateBooking(ctx context.Context, req *CreateBookingRequest) (*entity.Booking, error)
	GetBooking(ctx context.Context, id string) (*entity.Booking, error)
	GetBookingDetails(ctx context.Context, bookingID string) (*entity.BookingDetails, error)
	GetBookingsByEmail(ctx context.Context, email string, limit, offset int) ([]*entity.Booking, int, error)

	// CancelBooking отклоняет повторную отмену ошибкой ErrBookingCancelled
	CancelBooking(ctx context.Context, id string) (*entity.Booking, error)
}

// ReviewService определяет интерфейс для операций с отзывами
type ReviewService interface {
	AddReview(ctx context.Context, eventID string, req *AddReviewRequest) (*entity.Review, error)
	GetEventReviews(ctx context.Context, eventID string, limit, offset int) ([]*entity.Review, int, error)
	UpdateReview(ctx context.Context, id string, req *UpdateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

// CurrencyService определяет интерфейс конвертации валют
type CurrencyService interface {
	GetRates(ctx context.Context) (map[string]float64, error)
	Convert(ctx context.Context, amountMinor int64, from, to string) (int64, error)
	Refresh(ctx context.Context) error
}
