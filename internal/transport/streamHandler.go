package transport

import (
	"io"
	"net/http"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/broadcast"
	"github.com/ds124wfegd/eventmarket/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type StreamHandler struct {
	eventService      service.EventService
	broadcaster       *broadcast.Broadcaster
	heartbeatInterval time.Duration
}

func NewStreamHandler(eventService service.EventService, broadcaster *broadcast.Broadcaster, heartbeatInterval time.Duration) *StreamHandler {
	if heartbeatInterval <= 0 {
		heartbeatInterval = 25 * time.Second
	}
	return &StreamHandler{
		eventService:      eventService,
		broadcaster:       broadcaster,
		heartbeatInterval: heartbeatInterval,
	}
}

// StreamEventUpdates раздает изменения занятости слотов мероприятия по SSE
func (h *StreamHandler) StreamEventUpdates(c *gin.Context) {
	eventID := c.Param("id")

	if _, err := h.eventService.GetEvent(c.Request.Context(), eventID); err != nil {
		respondError(c, err)
		return
	}

	pubsub := h.broadcaster.Subscribe(c.Request.Context(), eventID)
	defer pubsub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	logrus.Infof("открыт поток обновлений для мероприятия %s", eventID)

	heartbeat := time.NewTicker(h.heartbeatInterval)
	defer heartbeat.Stop()

	messages := pubsub.Channel()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-messages:
			if !ok {
				return false
			}
			c.SSEvent("update", msg.Payload)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})

	logrus.Infof("закрыт поток обновлений для мероприятия %s", eventID)
}
