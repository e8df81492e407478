package service

import (
	"context"
	"fmt"
	"time"

	repository "github.com/ds124wfegd/eventmarket/internal/database/postgres"
	"github.com/ds124wfegd/eventmarket/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AddReviewRequest представляет данные для создания отзыва
type AddReviewRequest struct {
	BookingID string  `json:"booking_id" binding:"required,uuid"`
	Rating    int     `json:"rating" binding:"required,min=1,max=5"`
	Comment   *string `json:"comment" binding:"omitempty,max=2000"`
}

// UpdateReviewRequest содержит опциональные поля частичного обновления отзыва
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	eventRepo  repository.EventRepository
	queue      TaskPublisher
}

// NewReviewService создает новый экземпляр ReviewService
func NewReviewService(reviewRepo repository.ReviewRepository, eventRepo repository.EventRepository, queue TaskPublisher) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		eventRepo:  eventRepo,
		queue:      queue,
	}
}

// AddReview создает отзыв по подтвержденному бронированию. Правила "одна
// бронь — один отзыв" и "только CONFIRMED" проверяются в транзакции хранилища.
func (s *reviewService) AddReview(ctx context.Context, eventID string, req *AddReviewRequest) (*entity.Review, error) {
	review := &entity.Review{
		ID:        uuid.NewString(),
		EventID:   eventID,
		BookingID: req.BookingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	logrus.Infof("Отзыв создан: ID=%s, Event=%s, Rating=%d", review.ID, eventID, review.Rating)

	s.recomputeRating(ctx, eventID)
	return review, nil
}

func (s *reviewService) GetEventReviews(ctx context.Context, eventID string, limit, offset int) ([]*entity.Review, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.reviewRepo.GetByEventID(ctx, eventID, limit, offset)
}

func (s *reviewService) UpdateReview(ctx context.Context, id string, req *UpdateReviewRequest) (*entity.Review, error) {
	if req.Rating == nil && req.Comment == nil {
		return nil, fmt.Errorf("%w: rating or comment is required", entity.ErrInvalidInput)
	}

	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = req.Comment
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("ошибка при обновлении отзыва: %w", err)
	}

	s.recomputeRating(ctx, review.EventID)
	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, id string) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return err
	}

	logrus.Infof("Отзыв удален: ID=%s, Event=%s", id, review.EventID)

	s.recomputeRating(ctx, review.EventID)
	return nil
}

// recomputeRating синхронно пересчитывает агрегат; при сбое ошибка логируется
// и пересчет уходит в очередь на повтор, отзыв при этом не теряется
func (s *reviewService) recomputeRating(ctx context.Context, eventID string) {
	err := s.eventRepo.RecomputeRating(ctx, eventID)
	if err == nil {
		return
	}
	logrus.Errorf("Не удалось пересчитать рейтинг мероприятия %s: %v", eventID, err)

	if s.queue == nil {
		return
	}

	task := &Task{
		ID:   fmt.Sprintf("recompute_rating_%s_%d", eventID, time.Now().Unix()),
		Type: TaskTypeRecomputeRating,
		Data: map[string]interface{}{
			"event_id": eventID,
		},
		ExecuteAt:  time.Now().Add(5 * time.Second),
		MaxRetries: 5,
	}

	if err := s.queue.Publish(ctx, task); err != nil {
		logrus.Errorf("Не удалось запланировать пересчет рейтинга %s: %v", eventID, err)
	}
}
