package transport

import (
	"errors"
	"net/http"

	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/gin-gonic/gin"
)

// SuccessResponse представляет успешный ответ
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// respondError переводит доменные ошибки в HTTP статус и машинный код
func respondError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	c.JSON(status, ErrorResponse{
		Success: false,
		Error:   code,
		Message: err.Error(),
	})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrEventNotFound),
		errors.Is(err, entity.ErrSlotNotFound),
		errors.Is(err, entity.ErrBookingNotFound),
		errors.Is(err, entity.ErrReviewNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, entity.ErrSlotFull):
		return http.StatusConflict, "slot_full"
	case errors.Is(err, entity.ErrDuplicateBooking):
		return http.StatusConflict, "duplicate_booking"
	case errors.Is(err, entity.ErrBookingCancelled):
		return http.StatusConflict, "already_cancelled"
	case errors.Is(err, entity.ErrSlotAlreadyExists):
		return http.StatusConflict, "slot_already_exists"
	case errors.Is(err, entity.ErrReviewAlreadyExists):
		return http.StatusConflict, "review_already_exists"
	case errors.Is(err, entity.ErrBookingNotConfirmed):
		return http.StatusUnprocessableEntity, "booking_not_confirmed"
	case errors.Is(err, entity.ErrReviewWrongEvent),
		errors.Is(err, entity.ErrInvalidCategory),
		errors.Is(err, entity.ErrInvalidSort),
		errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, entity.ErrMissingRate):
		return http.StatusBadGateway, "missing_rate"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
