package transport

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ds124wfegd/eventmarket/pkg/queue"
	"github.com/gin-gonic/gin"
)

// AdminHandler дает операторский доступ к очереди отложенных задач
type AdminHandler struct {
	dlq queue.DLQHandler
}

func NewAdminHandler(dlq queue.DLQHandler) *AdminHandler {
	return &AdminHandler{dlq: dlq}
}

// GetFailedTasks возвращает задачи из мертвой очереди, новые первыми
func (h *AdminHandler) GetFailedTasks(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	tasks, err := h.dlq.GetFailedTasks(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    tasks,
		Meta: map[string]interface{}{
			"limit": limit,
			"count": len(tasks),
		},
	})
}

// RequeueFailedTask возвращает задачу из мертвой очереди на повторное выполнение
func (h *AdminHandler) RequeueFailedTask(c *gin.Context) {
	taskID := c.Param("id")

	if err := h.dlq.RequeueFailedTask(c.Request.Context(), taskID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Success: false,
				Error:   "not_found",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "task requeued",
		Meta: map[string]interface{}{
			"task_id": taskID,
		},
	})
}
