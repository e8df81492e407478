package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/broadcast"
	repository "github.com/ds124wfegd/eventmarket/internal/database/postgres"
	"github.com/ds124wfegd/eventmarket/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CreateBookingRequest представляет данные для бронирования слота
type CreateBookingRequest struct {
	SlotID string `json:"slot_id"`
	Name   string `json:"name" binding:"required,min=1,max=120"`
	Email  string `json:"email" binding:"required,email"`
}

// TaskPublisher интерфейс для публикации задач в очередь
type TaskPublisher interface {
	Publish(ctx context.Context, task *Task) error
}

// Task представляет задачу для очереди
type Task struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	ExecuteAt  time.Time              `json:"execute_at"`
	MaxRetries int                    `json:"max_retries"`
	Attempts   int                    `json:"attempts"`
}

// Константы типов задач
const (
	TaskTypeSendConfirmationEmail = "send_confirmation_email"
	TaskTypeSendCancellationEmail = "send_cancellation_email"
	TaskTypeRecomputeRating       = "recompute_rating"
)

// OccupancyPublisher транслирует изменения занятости слота подписчикам
type OccupancyPublisher interface {
	Publish(ctx context.Context, eventID string, update broadcast.SlotUpdate) error
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	slotRepo    repository.SlotRepository
	queue       TaskPublisher
	occupancy   OccupancyPublisher
}

// NewBookingService создает новый экземпляр BookingService
func NewBookingService(
	bookingRepo repository.BookingRepository,
	slotRepo repository.SlotRepository,
	queue TaskPublisher,
	occupancy OccupancyPublisher,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		queue:       queue,
		occupancy:   occupancy,
	}
}

// CreateBooking создает подтвержденное бронирование слота.
// Вместимость и уникальность (слот, email) проверяются в транзакции хранилища.
func (s *bookingService) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*entity.Booking, error) {
	booking := &entity.Booking{
		ID:     uuid.NewString(),
		SlotID: req.SlotID,
		Name:   req.Name,
		Email:  req.Email,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	logrus.Infof("Бронирование создано: ID=%s, Slot=%s, Email=%s",
		booking.ID, booking.SlotID, booking.Email)

	s.publishOccupancy(ctx, booking.SlotID)

	// Письмо с подтверждением уходит через очередь, сбой не ломает бронирование
	if s.queue != nil {
		if err := s.scheduleConfirmationEmail(ctx, booking); err != nil {
			logrus.Errorf("Ошибка при планировании письма подтверждения: %v", err)
		}
	}

	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*entity.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *bookingService) GetBookingDetails(ctx context.Context, bookingID string) (*entity.BookingDetails, error) {
	return s.bookingRepo.GetDetails(ctx, bookingID)
}

func (s *bookingService) GetBookingsByEmail(ctx context.Context, email string, limit, offset int) ([]*entity.Booking, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.bookingRepo.GetByEmail(ctx, email, limit, offset)
}

// CancelBooking отменяет бронирование. Повторная отмена считается ошибкой;
// хранилище само сообщает, был ли переход статуса, поэтому из двух
// конкурентных отмен письмо и трансляцию получает ровно одна.
func (s *bookingService) CancelBooking(ctx context.Context, id string) (*entity.Booking, error) {
	booking, transitioned, err := s.bookingRepo.Cancel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ошибка при отмене бронирования: %w", err)
	}

	if !transitioned {
		return nil, entity.ErrBookingCancelled
	}

	logrus.Infof("Бронирование отменено: ID=%s, Slot=%s", booking.ID, booking.SlotID)

	s.publishOccupancy(ctx, booking.SlotID)

	if s.queue != nil {
		task := &Task{
			ID:   fmt.Sprintf("cancellation_email_%s_%d", booking.ID, time.Now().Unix()),
			Type: TaskTypeSendCancellationEmail,
			Data: map[string]interface{}{
				"booking_id": booking.ID,
			},
			MaxRetries: 3,
		}
		if err := s.queue.Publish(ctx, task); err != nil {
			logrus.Errorf("Ошибка при планировании письма об отмене: %v", err)
		}
	}

	return booking, nil
}

// publishOccupancy отправляет актуальную занятость слота; трансляция
// fire-and-forget, ошибки только логируются
func (s *bookingService) publishOccupancy(ctx context.Context, slotID string) {
	if s.occupancy == nil {
		return
	}

	slot, err := s.slotRepo.GetOccupancy(ctx, slotID)
	if err != nil {
		logrus.Errorf("Не удалось получить занятость слота %s: %v", slotID, err)
		return
	}

	update := broadcast.SlotUpdate{
		SlotID:    slot.ID,
		Remaining: slot.Remaining,
		IsFull:    slot.IsFull,
	}

	if err := s.occupancy.Publish(ctx, slot.EventID, update); err != nil {
		logrus.Errorf("Не удалось опубликовать занятость слота %s: %v", slotID, err)
	}
}

func (s *bookingService) scheduleConfirmationEmail(ctx context.Context, booking *entity.Booking) error {
	task := &Task{
		ID:   fmt.Sprintf("confirmation_email_%s_%d", booking.ID, time.Now().Unix()),
		Type: TaskTypeSendConfirmationEmail,
		Data: map[string]interface{}{
			"booking_id": booking.ID,
		},
		ExecuteAt:  time.Now().Add(2 * time.Second),
		MaxRetries: 3,
	}

	if err := s.queue.Publish(ctx, task); err != nil {
		return fmt.Errorf("ошибка при публикации задачи: %w", err)
	}

	return nil
}
