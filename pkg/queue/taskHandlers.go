package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/pkg/calendar"
	"github.com/ds124wfegd/eventmarket/pkg/mailer"
)

// BookingDetailsProvider загружает бронь вместе со слотом и мероприятием
type BookingDetailsProvider interface {
	GetBookingDetails(ctx context.Context, bookingID string) (*entity.BookingDetails, error)
}

// RatingRecomputer пересчитывает агрегат рейтинга мероприятия
type RatingRecomputer interface {
	RecomputeRating(ctx context.Context, eventID string) error
}

// TaskHandler dispatches queued tasks to their executors
type TaskHandler struct {
	details        BookingDetailsProvider
	ratings        RatingRecomputer
	mailer         *mailer.Mailer
	calendarDomain string
	organizerEmail string
}

func NewTaskHandler(details BookingDetailsProvider, ratings RatingRecomputer, m *mailer.Mailer, calendarDomain, organizerEmail string) *TaskHandler {
	return &TaskHandler{
		details:        details,
		ratings:        ratings,
		mailer:         m,
		calendarDomain: calendarDomain,
		organizerEmail: organizerEmail,
	}
}

// HandleTask executes a single task; errors bubble up to the retry logic
func (h *TaskHandler) HandleTask(task *Task) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch task.Type {
	case TaskTypeSendConfirmationEmail:
		return h.handleConfirmationEmail(ctx, task)
	case TaskTypeSendCancellationEmail:
		return h.handleCancellationEmail(ctx, task)
	case TaskTypeRecomputeRating:
		return h.handleRecomputeRating(ctx, task)
	default:
		return fmt.Errorf("invalid task type: %s", task.Type)
	}
}

func (h *TaskHandler) handleConfirmationEmail(ctx context.Context, task *Task) error {
	bookingID := task.GetString("booking_id")
	if bookingID == "" {
		return fmt.Errorf("invalid task data: booking_id is required")
	}

	details, err := h.details.GetBookingDetails(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}

	invite := calendar.NewInvite(
		details.Booking.ID,
		h.calendarDomain,
		details.Event.Title,
		details.Event.Description,
		details.Slot.StartUTC,
		details.Event.DurationMin,
		h.organizerEmail,
	)

	body := fmt.Sprintf(
		"Здравствуйте, %s!\n\n"+
			"Ваше бронирование подтверждено.\n\n"+
			"Мероприятие: %s\n"+
			"Организатор: %s\n"+
			"Начало: %s\n"+
			"Номер брони: %s\n\n"+
			"Добавить в Google Календарь: %s\n",
		details.Booking.Name,
		details.Event.Title,
		details.Event.HostName,
		details.Slot.StartUTC.Format("02.01.2006 15:04 MST"),
		details.Booking.ID,
		invite.GoogleLink(),
	)

	subject := fmt.Sprintf("Бронирование подтверждено: %s", details.Event.Title)
	return h.mailer.SendWithInvite(details.Booking.Email, subject, body, invite.ICS())
}

func (h *TaskHandler) handleCancellationEmail(ctx context.Context, task *Task) error {
	bookingID := task.GetString("booking_id")
	if bookingID == "" {
		return fmt.Errorf("invalid task data: booking_id is required")
	}

	details, err := h.details.GetBookingDetails(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}

	body := fmt.Sprintf(
		"Здравствуйте, %s!\n\n"+
			"Ваше бронирование на мероприятие \"%s\" (%s) отменено.\n"+
			"Номер брони: %s\n",
		details.Booking.Name,
		details.Event.Title,
		details.Slot.StartUTC.Format("02.01.2006 15:04 MST"),
		details.Booking.ID,
	)

	subject := fmt.Sprintf("Бронирование отменено: %s", details.Event.Title)
	return h.mailer.Send(details.Booking.Email, subject, body)
}

func (h *TaskHandler) handleRecomputeRating(ctx context.Context, task *Task) error {
	eventID := task.GetString("event_id")
	if eventID == "" {
		return fmt.Errorf("invalid task data: event_id is required")
	}

	return h.ratings.RecomputeRating(ctx, eventID)
}
