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

// CreateEventRequest представляет данные для создания мероприятия
type CreateEventRequest struct {
	Title       string             `json:"title" binding:"required,min=1,max=200"`
	Description string             `json:"description" binding:"max=5000"`
	HostName    string             `json:"host_name" binding:"required,min=1,max=120"`
	Category    string             `json:"category" binding:"required"`
	DurationMin int                `json:"duration_min" binding:"required,min=1,max=1440"`
	PriceMinor  int64              `json:"price_minor" binding:"min=0"`
	Currency    string             `json:"currency" binding:"omitempty,len=3"`
	Timezone    string             `json:"timezone"`
	ImageURL    *string            `json:"image_url"`
	Slots       []CreateSlotInline `json:"slots" binding:"required,min=1,dive"`
}

// CreateSlotInline представляет слот внутри запроса создания мероприятия
type CreateSlotInline struct {
	StartUTC    time.Time `json:"start_utc" binding:"required"`
	MaxBookings int       `json:"max_bookings" binding:"required,min=1"`
}

// UpdateEventRequest содержит опциональные поля частичного обновления
type UpdateEventRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	HostName    *string `json:"host_name" binding:"omitempty,min=1,max=120"`
	Category    *string `json:"category"`
	DurationMin *int    `json:"duration_min" binding:"omitempty,min=1,max=1440"`
	PriceMinor  *int64  `json:"price_minor" binding:"omitempty,min=0"`
	Currency    *string `json:"currency" binding:"omitempty,len=3"`
	Timezone    *string `json:"timezone"`
	ImageURL    *string `json:"image_url"`
}

// AddSlotRequest представляет данные для добавления слота
type AddSlotRequest struct {
	StartUTC    time.Time `json:"start_utc" binding:"required"`
	MaxBookings int       `json:"max_bookings" binding:"required,min=1"`
}

// EventFilter представляет параметры поиска мероприятий
type EventFilter struct {
	Query    string
	Category string
	PriceMin *int64
	PriceMax *int64
	Sort     string
	Page     int
	Size     int
}

type eventService struct {
	eventRepo       repository.EventRepository
	slotRepo        repository.SlotRepository
	defaultPageSize int
	maxPageSize     int
	windowDays      int
}

// NewEventService создает новый экземпляр EventService
func NewEventService(eventRepo repository.EventRepository, slotRepo repository.SlotRepository, defaultPageSize, maxPageSize, windowDays int) EventService {
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	return &eventService{
		eventRepo:       eventRepo,
		slotRepo:        slotRepo,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		windowDays:      windowDays,
	}
}

// CreateEvent создает мероприятие вместе с начальными слотами
func (s *eventService) CreateEvent(ctx context.Context, req *CreateEventRequest) (*entity.EventWithSlots, error) {
	category := entity.Category(req.Category)
	if !category.Valid() {
		return nil, entity.ErrInvalidCategory
	}

	// Мероприятие без слотов нечего бронировать
	if len(req.Slots) == 0 {
		return nil, fmt.Errorf("%w: event needs at least one slot", entity.ErrInvalidInput)
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	event := &entity.Event{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		HostName:    req.HostName,
		Category:    category,
		DurationMin: req.DurationMin,
		PriceMinor:  req.PriceMinor,
		Currency:    currency,
		Timezone:    timezone,
		ImageURL:    req.ImageURL,
	}

	slots := make([]*entity.Slot, 0, len(req.Slots))
	for _, sl := range req.Slots {
		slots = append(slots, &entity.Slot{
			ID:          uuid.NewString(),
			StartUTC:    sl.StartUTC.UTC(),
			MaxBookings: sl.MaxBookings,
		})
	}

	if err := s.eventRepo.Create(ctx, event, slots); err != nil {
		return nil, fmt.Errorf("ошибка при создании мероприятия: %w", err)
	}

	logrus.Infof("Мероприятие создано: ID=%s, Title=%q, Slots=%d", event.ID, event.Title, len(slots))

	result := &entity.EventWithSlots{Event: *event}
	for _, sl := range slots {
		withOcc := &entity.SlotWithOccupancy{Slot: *sl}
		withOcc.FillOccupancy(0)
		result.Slots = append(result.Slots, withOcc)
	}

	return result, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*entity.EventWithSlots, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateEvent применяет только присланные поля
func (s *eventService) UpdateEvent(ctx context.Context, id string, req *UpdateEventRequest) (*entity.Event, error) {
	existing, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	event := existing.Event
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.HostName != nil {
		event.HostName = *req.HostName
	}
	if req.Category != nil {
		category := entity.Category(*req.Category)
		if !category.Valid() {
			return nil, entity.ErrInvalidCategory
		}
		event.Category = category
	}
	if req.DurationMin != nil {
		event.DurationMin = *req.DurationMin
	}
	if req.PriceMinor != nil {
		event.PriceMinor = *req.PriceMinor
	}
	if req.Currency != nil {
		event.Currency = *req.Currency
	}
	if req.Timezone != nil {
		event.Timezone = *req.Timezone
	}
	if req.ImageURL != nil {
		event.ImageURL = req.ImageURL
	}

	if err := s.eventRepo.Update(ctx, &event); err != nil {
		return nil, fmt.Errorf("ошибка при обновлении мероприятия: %w", err)
	}

	return &event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}
	logrus.Infof("Мероприятие удалено: ID=%s", id)
	return nil
}

func (s *eventService) AddSlot(ctx context.Context, eventID string, req *AddSlotRequest) (*entity.Slot, error) {
	slot := &entity.Slot{
		ID:          uuid.NewString(),
		EventID:     eventID,
		StartUTC:    req.StartUTC.UTC(),
		MaxBookings: req.MaxBookings,
	}

	if err := s.slotRepo.Create(ctx, slot); err != nil {
		return nil, err
	}

	logrus.Infof("Слот добавлен: ID=%s, Event=%s, Start=%s", slot.ID, eventID, slot.StartUTC.Format(time.RFC3339))
	return slot, nil
}

// SearchEvents валидирует фильтр и выполняет поиск
func (s *eventService) SearchEvents(ctx context.Context, filter *EventFilter) ([]*entity.Event, int, error) {
	sort := filter.Sort
	if sort == "" {
		sort = repository.SortRecent
	}
	switch sort {
	case repository.SortRecent, repository.SortPriceAsc, repository.SortPriceDesc,
		repository.SortRating, repository.SortPopularity:
	default:
		return nil, 0, entity.ErrInvalidSort
	}

	if filter.Category != "" && !entity.Category(filter.Category).Valid() {
		return nil, 0, entity.ErrInvalidCategory
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.Size
	if size <= 0 {
		size = s.defaultPageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}
	filter.Page = page
	filter.Size = size

	repoFilter := &repository.SearchFilter{
		Query:      filter.Query,
		Category:   entity.Category(filter.Category),
		PriceMin:   filter.PriceMin,
		PriceMax:   filter.PriceMax,
		Sort:       sort,
		Page:       page,
		Size:       size,
		WindowDays: s.windowDays,
	}

	return s.eventRepo.Search(ctx, repoFilter)
}

func (s *eventService) RecomputeRating(ctx context.Context, eventID string) error {
	return s.eventRepo.RecomputeRating(ctx, eventID)
}
