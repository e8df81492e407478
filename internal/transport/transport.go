package transport

import (
	"time"

	"github.com/ds124wfegd/eventmarket/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

func InitRoutes(
	eventHandler *EventHandler,
	bookingHandler *BookingHandler,
	reviewHandler *ReviewHandler,
	metaHandler *MetaHandler,
	streamHandler *StreamHandler,
	adminHandler *AdminHandler,
) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.Timeout(30))
	{
		// Event routes
		events := api.Group("/events")
		{
			events.POST("", eventHandler.CreateEvent)
			events.GET("", eventHandler.ListEvents)
			events.GET("/:id", eventHandler.GetEvent)
			events.PATCH("/:id", eventHandler.UpdateEvent)
			events.DELETE("/:id", eventHandler.DeleteEvent)
			events.POST("/:id/slots", eventHandler.AddSlot)
			events.POST("/:id/reviews", reviewHandler.AddReview)
			events.GET("/:id/reviews", reviewHandler.GetEventReviews)
		}

		// Booking routes
		api.POST("/slots/:slot_id/bookings", bookingHandler.CreateBooking)
		bookings := api.Group("/bookings")
		{
			bookings.GET("", bookingHandler.GetBookingsByEmail)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.PATCH("/:id/cancel", bookingHandler.CancelBooking)
			bookings.GET("/:id/calendar.ics", bookingHandler.GetCalendar)
		}

		// Review routes
		reviews := api.Group("/reviews")
		{
			reviews.PATCH("/:id", reviewHandler.UpdateReview)
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
		}

		// Meta routes
		api.GET("/categories", metaHandler.GetCategories)
		fx := api.Group("/fx")
		{
			fx.GET("", metaHandler.GetRates)
			fx.GET("/convert", metaHandler.Convert)
		}

		// Admin routes, доступны только при работающей очереди
		if adminHandler != nil {
			admin := api.Group("/admin")
			{
				admin.GET("/dlq", adminHandler.GetFailedTasks)
				admin.POST("/dlq/:id/requeue", adminHandler.RequeueFailedTask)
			}
		}
	}

	// SSE поток живет дольше таймаута обычных запросов
	stream := router.Group("/api/v1/events")
	{
		stream.GET("/:id/updates", streamHandler.StreamEventUpdates)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	return router
}
