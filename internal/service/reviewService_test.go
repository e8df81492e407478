package service

import (
	"context"
	"testing"

	repository "github.com/ds124wfegd/eventmarket/internal/database/postgres"
	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReviewRepo struct {
	reviews   map[string]*entity.Review
	createErr error
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string]*entity.Review)}
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	review, ok := r.reviews[id]
	if !ok {
		return nil, entity.ErrReviewNotFound
	}
	return review, nil
}

func (r *fakeReviewRepo) GetByEventID(ctx context.Context, eventID string, limit, offset int) ([]*entity.Review, int, error) {
	var matched []*entity.Review
	for _, rev := range r.reviews {
		if rev.EventID == eventID {
			matched = append(matched, rev)
		}
	}
	return matched, len(matched), nil
}

func (r *fakeReviewRepo) Update(ctx context.Context, review *entity.Review) error {
	if _, ok := r.reviews[review.ID]; !ok {
		return entity.ErrReviewNotFound
	}
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.reviews[id]; !ok {
		return entity.ErrReviewNotFound
	}
	delete(r.reviews, id)
	return nil
}

type fakeEventRepo struct {
	recomputed   []string
	recomputeErr error
}

func (r *fakeEventRepo) Create(ctx context.Context, event *entity.Event, slots []*entity.Slot) error {
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id string) (*entity.EventWithSlots, error) {
	return nil, entity.ErrEventNotFound
}

func (r *fakeEventRepo) Update(ctx context.Context, event *entity.Event) error {
	return nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func (r *fakeEventRepo) Search(ctx context.Context, filter *repository.SearchFilter) ([]*entity.Event, int, error) {
	return nil, 0, nil
}

func (r *fakeEventRepo) RecomputeRating(ctx context.Context, eventID string) error {
	if r.recomputeErr != nil {
		return r.recomputeErr
	}
	r.recomputed = append(r.recomputed, eventID)
	return nil
}

// TestAddReview тестирует создание отзыва с пересчетом рейтинга
func TestAddReview(t *testing.T) {
	reviewRepo := newFakeReviewRepo()
	eventRepo := &fakeEventRepo{}
	queue := &fakeTaskPublisher{}

	svc := NewReviewService(reviewRepo, eventRepo, queue)

	comment := "Отличное мероприятие"
	review, err := svc.AddReview(context.Background(), "event-1", &AddReviewRequest{
		BookingID: "booking-1",
		Rating:    5,
		Comment:   &comment,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)
	assert.Equal(t, "event-1", review.EventID)
	assert.Equal(t, 5, review.Rating)

	// Агрегат рейтинга пересчитан синхронно
	require.Len(t, eventRepo.recomputed, 1)
	assert.Equal(t, "event-1", eventRepo.recomputed[0])
	assert.Empty(t, queue.tasks)
}

// TestAddReviewGuardErrors тестирует проброс ошибок транзакционных проверок
func TestAddReviewGuardErrors(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
	}{
		{
			name:    "booking is not confirmed",
			repoErr: entity.ErrBookingNotConfirmed,
		},
		{
			name:    "second review for the same booking",
			repoErr: entity.ErrReviewAlreadyExists,
		},
		{
			name:    "booking belongs to another event",
			repoErr: entity.ErrReviewWrongEvent,
		},
		{
			name:    "booking does not exist",
			repoErr: entity.ErrBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviewRepo := newFakeReviewRepo()
			reviewRepo.createErr = tt.repoErr
			eventRepo := &fakeEventRepo{}

			svc := NewReviewService(reviewRepo, eventRepo, &fakeTaskPublisher{})

			_, err := svc.AddReview(context.Background(), "event-1", &AddReviewRequest{
				BookingID: "booking-1",
				Rating:    4,
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.repoErr)
			// Рейтинг не трогаем, если отзыв не создан
			assert.Empty(t, eventRepo.recomputed)
		})
	}
}

// TestAddReviewRecomputeFallback тестирует уход пересчета в очередь при сбое
func TestAddReviewRecomputeFallback(t *testing.T) {
	reviewRepo := newFakeReviewRepo()
	eventRepo := &fakeEventRepo{recomputeErr: assert.AnError}
	queue := &fakeTaskPublisher{}

	svc := NewReviewService(reviewRepo, eventRepo, queue)

	review, err := svc.AddReview(context.Background(), "event-1", &AddReviewRequest{
		BookingID: "booking-1",
		Rating:    3,
	})

	// Отзыв создан несмотря на сбой пересчета
	require.NoError(t, err)
	require.NotNil(t, review)

	// Пересчет запланирован в очереди
	require.Len(t, queue.tasks, 1)
	assert.Equal(t, TaskTypeRecomputeRating, queue.tasks[0].Type)
	assert.Equal(t, "event-1", queue.tasks[0].Data["event_id"])
}

// TestUpdateReview тестирует частичное обновление отзыва
func TestUpdateReview(t *testing.T) {
	reviewRepo := newFakeReviewRepo()
	oldComment := "нормально"
	reviewRepo.reviews["review-1"] = &entity.Review{
		ID:      "review-1",
		EventID: "event-1",
		Rating:  3,
		Comment: &oldComment,
	}
	eventRepo := &fakeEventRepo{}

	svc := NewReviewService(reviewRepo, eventRepo, &fakeTaskPublisher{})

	newRating := 5
	review, err := svc.UpdateReview(context.Background(), "review-1", &UpdateReviewRequest{
		Rating: &newRating,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	require.NotNil(t, review.Comment)
	assert.Equal(t, "нормально", *review.Comment)
	assert.Equal(t, []string{"event-1"}, eventRepo.recomputed)
}

// TestUpdateReviewEmptyPatch тестирует отклонение пустого частичного обновления
func TestUpdateReviewEmptyPatch(t *testing.T) {
	reviewRepo := newFakeReviewRepo()
	reviewRepo.reviews["review-1"] = &entity.Review{
		ID:      "review-1",
		EventID: "event-1",
		Rating:  3,
	}
	eventRepo := &fakeEventRepo{}

	svc := NewReviewService(reviewRepo, eventRepo, &fakeTaskPublisher{})

	_, err := svc.UpdateReview(context.Background(), "review-1", &UpdateReviewRequest{})

	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
	// Пустое обновление не трогает отзыв и рейтинг
	assert.Equal(t, 3, reviewRepo.reviews["review-1"].Rating)
	assert.Empty(t, eventRepo.recomputed)
}

// TestDeleteReview тестирует удаление отзыва с пересчетом рейтинга
func TestDeleteReview(t *testing.T) {
	reviewRepo := newFakeReviewRepo()
	reviewRepo.reviews["review-1"] = &entity.Review{
		ID:      "review-1",
		EventID: "event-1",
		Rating:  1,
	}
	eventRepo := &fakeEventRepo{}

	svc := NewReviewService(reviewRepo, eventRepo, &fakeTaskPublisher{})

	require.NoError(t, svc.DeleteReview(context.Background(), "review-1"))
	assert.Empty(t, reviewRepo.reviews)
	assert.Equal(t, []string{"event-1"}, eventRepo.recomputed)

	err := svc.DeleteReview(context.Background(), "review-1")
	assert.ErrorIs(t, err, entity.ErrReviewNotFound)
}
