package transport

import (
	"net/http"
	"strconv"

	"github.com/ds124wfegd/eventmarket/internal/service"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Data:    event,
	})
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.eventService.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    event,
	})
}

// ListEvents возвращает страницу мероприятий с фильтрами и сортировкой
func (h *EventHandler) ListEvents(c *gin.Context) {
	filter := service.EventFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	}

	if v := c.Query("price_min"); v != "" {
		priceMin, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "validation_error", Message: "invalid price_min"})
			return
		}
		filter.PriceMin = &priceMin
	}

	if v := c.Query("price_max"); v != "" {
		priceMax, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "validation_error", Message: "invalid price_max"})
			return
		}
		filter.PriceMax = &priceMax
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("size", "0")); err == nil {
		filter.Size = size
	}

	events, total, err := h.eventService.SearchEvents(c.Request.Context(), &filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("X-Total", strconv.Itoa(total))
	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    events,
		Meta: map[string]interface{}{
			"page":  filter.Page,
			"size":  filter.Size,
			"total": total,
		},
	})
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	var req service.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    event,
	})
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	if err := h.eventService.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "event deleted",
	})
}

func (h *EventHandler) AddSlot(c *gin.Context) {
	var req service.AddSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	slot, err := h.eventService.AddSlot(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Data:    slot,
	})
}
