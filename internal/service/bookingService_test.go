package service

import (
	"context"
	"testing"

	"github.com/ds124wfegd/eventmarket/internal/broadcast"
	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookingRepo struct {
	bookings  map[string]*entity.Booking
	createErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*entity.Booking)}
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	booking.Status = entity.BookingStatusConfirmed
	r.bookings[booking.ID] = booking
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*entity.Booking, error) {
	booking, ok := r.bookings[id]
	if !ok {
		return nil, entity.ErrBookingNotFound
	}
	return booking, nil
}

func (r *fakeBookingRepo) GetByEmail(ctx context.Context, email string, limit, offset int) ([]*entity.Booking, int, error) {
	var matched []*entity.Booking
	for _, b := range r.bookings {
		if b.Email == email {
			matched = append(matched, b)
		}
	}
	return matched, len(matched), nil
}

func (r *fakeBookingRepo) Cancel(ctx context.Context, id string) (*entity.Booking, bool, error) {
	booking, ok := r.bookings[id]
	if !ok {
		return nil, false, entity.ErrBookingNotFound
	}
	if booking.Status == entity.BookingStatusCancelled {
		return booking, false, nil
	}
	booking.Status = entity.BookingStatusCancelled
	return booking, true, nil
}

func (r *fakeBookingRepo) GetDetails(ctx context.Context, id string) (*entity.BookingDetails, error) {
	booking, ok := r.bookings[id]
	if !ok {
		return nil, entity.ErrBookingNotFound
	}
	return &entity.BookingDetails{Booking: booking}, nil
}

type fakeSlotRepo struct {
	occupancy map[string]*entity.SlotWithOccupancy
}

func (r *fakeSlotRepo) Create(ctx context.Context, slot *entity.Slot) error {
	return nil
}

func (r *fakeSlotRepo) GetByID(ctx context.Context, id string) (*entity.Slot, error) {
	if occ, ok := r.occupancy[id]; ok {
		return &occ.Slot, nil
	}
	return nil, entity.ErrSlotNotFound
}

func (r *fakeSlotRepo) GetByEventID(ctx context.Context, eventID string) ([]*entity.SlotWithOccupancy, error) {
	return nil, nil
}

func (r *fakeSlotRepo) GetOccupancy(ctx context.Context, slotID string) (*entity.SlotWithOccupancy, error) {
	occ, ok := r.occupancy[slotID]
	if !ok {
		return nil, entity.ErrSlotNotFound
	}
	return occ, nil
}

type fakeTaskPublisher struct {
	tasks      []*Task
	publishErr error
}

func (p *fakeTaskPublisher) Publish(ctx context.Context, task *Task) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.tasks = append(p.tasks, task)
	return nil
}

type fakeOccupancyPublisher struct {
	updates []broadcast.SlotUpdate
	events  []string
}

func (p *fakeOccupancyPublisher) Publish(ctx context.Context, eventID string, update broadcast.SlotUpdate) error {
	p.events = append(p.events, eventID)
	p.updates = append(p.updates, update)
	return nil
}

func slotOccupancy(slotID, eventID string, max, booked int) *entity.SlotWithOccupancy {
	occ := &entity.SlotWithOccupancy{
		Slot: entity.Slot{
			ID:          slotID,
			EventID:     eventID,
			MaxBookings: max,
		},
	}
	occ.FillOccupancy(booked)
	return occ
}

// TestCreateBooking тестирует создание бронирования с побочными эффектами
func TestCreateBooking(t *testing.T) {
	bookingRepo := newFakeBookingRepo()
	slotRepo := &fakeSlotRepo{occupancy: map[string]*entity.SlotWithOccupancy{
		"slot-1": slotOccupancy("slot-1", "event-1", 10, 3),
	}}
	queue := &fakeTaskPublisher{}
	occupancy := &fakeOccupancyPublisher{}

	svc := NewBookingService(bookingRepo, slotRepo, queue, occupancy)

	booking, err := svc.CreateBooking(context.Background(), &CreateBookingRequest{
		SlotID: "slot-1",
		Name:   "Анна",
		Email:  "anna@example.com",
	})

	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, entity.BookingStatusConfirmed, booking.Status)

	// Занятость слота транслируется подписчикам мероприятия
	require.Len(t, occupancy.updates, 1)
	assert.Equal(t, "event-1", occupancy.events[0])
	assert.Equal(t, "slot-1", occupancy.updates[0].SlotID)
	assert.Equal(t, 7, occupancy.updates[0].Remaining)
	assert.False(t, occupancy.updates[0].IsFull)

	// Письмо с подтверждением уходит через очередь
	require.Len(t, queue.tasks, 1)
	assert.Equal(t, TaskTypeSendConfirmationEmail, queue.tasks[0].Type)
	assert.Equal(t, booking.ID, queue.tasks[0].Data["booking_id"])
}

// TestCreateBookingRepoErrors тестирует проброс ошибок хранилища без изменений
func TestCreateBookingRepoErrors(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
	}{
		{
			name:    "slot is full",
			repoErr: entity.ErrSlotFull,
		},
		{
			name:    "duplicate booking for email",
			repoErr: entity.ErrDuplicateBooking,
		},
		{
			name:    "slot does not exist",
			repoErr: entity.ErrSlotNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookingRepo := newFakeBookingRepo()
			bookingRepo.createErr = tt.repoErr
			slotRepo := &fakeSlotRepo{occupancy: map[string]*entity.SlotWithOccupancy{}}
			queue := &fakeTaskPublisher{}
			occupancy := &fakeOccupancyPublisher{}

			svc := NewBookingService(bookingRepo, slotRepo, queue, occupancy)

			_, err := svc.CreateBooking(context.Background(), &CreateBookingRequest{
				SlotID: "slot-1",
				Name:   "Иван",
				Email:  "ivan@example.com",
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.repoErr)
			// Ни трансляции, ни письма при неудачном бронировании
			assert.Empty(t, occupancy.updates)
			assert.Empty(t, queue.tasks)
		})
	}
}

// TestCreateBookingQueueFailure тестирует, что сбой очереди не ломает бронирование
func TestCreateBookingQueueFailure(t *testing.T) {
	bookingRepo := newFakeBookingRepo()
	slotRepo := &fakeSlotRepo{occupancy: map[string]*entity.SlotWithOccupancy{
		"slot-1": slotOccupancy("slot-1", "event-1", 2, 1),
	}}
	queue := &fakeTaskPublisher{publishErr: assert.AnError}
	occupancy := &fakeOccupancyPublisher{}

	svc := NewBookingService(bookingRepo, slotRepo, queue, occupancy)

	booking, err := svc.CreateBooking(context.Background(), &CreateBookingRequest{
		SlotID: "slot-1",
		Name:   "Мария",
		Email:  "maria@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, booking.Status)
}

// TestCancelBooking тестирует отмену бронирования
func TestCancelBooking(t *testing.T) {
	bookingRepo := newFakeBookingRepo()
	bookingRepo.bookings["booking-1"] = &entity.Booking{
		ID:     "booking-1",
		SlotID: "slot-1",
		Email:  "anna@example.com",
		Status: entity.BookingStatusConfirmed,
	}
	slotRepo := &fakeSlotRepo{occupancy: map[string]*entity.SlotWithOccupancy{
		"slot-1": slotOccupancy("slot-1", "event-1", 5, 4),
	}}
	queue := &fakeTaskPublisher{}
	occupancy := &fakeOccupancyPublisher{}

	svc := NewBookingService(bookingRepo, slotRepo, queue, occupancy)

	booking, err := svc.CancelBooking(context.Background(), "booking-1")
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, booking.Status)

	// Освобожденное место транслируется подписчикам
	require.Len(t, occupancy.updates, 1)
	assert.Equal(t, "event-1", occupancy.events[0])

	// Письмо об отмене уходит через очередь
	require.Len(t, queue.tasks, 1)
	assert.Equal(t, TaskTypeSendCancellationEmail, queue.tasks[0].Type)
}

// TestCancelBookingTwice тестирует повторную отмену: второй вызов получает
// ошибку без трансляции и письма, даже если первый завершился только что
func TestCancelBookingTwice(t *testing.T) {
	bookingRepo := newFakeBookingRepo()
	bookingRepo.bookings["booking-1"] = &entity.Booking{
		ID:     "booking-1",
		SlotID: "slot-1",
		Status: entity.BookingStatusConfirmed,
	}
	slotRepo := &fakeSlotRepo{occupancy: map[string]*entity.SlotWithOccupancy{
		"slot-1": slotOccupancy("slot-1", "event-1", 5, 1),
	}}
	queue := &fakeTaskPublisher{}
	occupancy := &fakeOccupancyPublisher{}

	svc := NewBookingService(bookingRepo, slotRepo, queue, occupancy)

	_, err := svc.CancelBooking(context.Background(), "booking-1")
	require.NoError(t, err)

	_, err = svc.CancelBooking(context.Background(), "booking-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrBookingCancelled)

	// Побочные эффекты остались от первой отмены
	assert.Len(t, queue.tasks, 1)
	assert.Len(t, occupancy.updates, 1)
}

// TestCancelBookingNotFound тестирует отмену несуществующего бронирования
func TestCancelBookingNotFound(t *testing.T) {
	svc := NewBookingService(newFakeBookingRepo(), &fakeSlotRepo{}, &fakeTaskPublisher{}, &fakeOccupancyPublisher{})

	_, err := svc.CancelBooking(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrBookingNotFound)
}
