package events

import (
	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller) {
	events := router.Group("/events")
	{
		events.POST("", controller.CreateEvent)            // POST /events - Create event
		events.GET("", controller.ListEvents)              // GET /events - List events
		events.GET("/:eventId", controller.GetEvent)       // GET /events/:eventId - Get event
		events.PUT("/:eventId", controller.UpdateEvent)    // PUT /events/:eventId - Update event
		events.DELETE("/:eventId", controller.DeleteEvent) // DELETE /events/:eventId - Delete event
	}
}
