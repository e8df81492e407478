package transport

import (
	"net/http"
	"strconv"

	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/internal/service"
	"github.com/ds124wfegd/eventmarket/pkg/calendar"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService service.BookingService
	calendarDomain string
	organizerEmail string
}

func NewBookingHandler(bookingService service.BookingService, calendarDomain, organizerEmail string) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		calendarDomain: calendarDomain,
		organizerEmail: organizerEmail,
	}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	req.SlotID = c.Param("slot_id")

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "booking confirmed",
		Data:    booking,
	})
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	details, err := h.bookingService.GetBookingDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	invite := h.buildInvite(details)

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    details,
		Meta: map[string]interface{}{
			"google_calendar_link": invite.GoogleLink(),
		},
	})
}

// GetBookingsByEmail возвращает бронирования посетителя по email
func (h *BookingHandler) GetBookingsByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "validation_error",
			Message: "email query parameter is required",
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	bookings, total, err := h.bookingService.GetBookingsByEmail(c.Request.Context(), email, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    bookings,
		Meta: map[string]interface{}{
			"total":    total,
			"limit":    limit,
			"offset":   offset,
			"has_more": offset+len(bookings) < total,
		},
	})
}

// CancelBooking отменяет бронирование и освобождает место в слоте
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	booking, err := h.bookingService.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "booking cancelled",
		Data:    booking,
	})
}

// GetCalendar отдает приглашение в формате iCalendar для подтвержденного бронирования
func (h *BookingHandler) GetCalendar(c *gin.Context) {
	details, err := h.bookingService.GetBookingDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	invite := h.buildInvite(details)

	c.Header("Content-Disposition", `attachment; filename="invite.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(invite.ICS()))
}

func (h *BookingHandler) buildInvite(details *entity.BookingDetails) *calendar.Invite {
	return calendar.NewInvite(
		details.Booking.ID,
		h.calendarDomain,
		details.Event.Title,
		details.Event.Description,
		details.Slot.StartUTC,
		details.Event.DurationMin,
		h.organizerEmail,
	)
}
