package registrations

import (
	"github.com/gin-gonic/gin"
)

// SetupRegistrationRoutes mounts both surfaces of the engine. The event-centric
// group aliases the user-centric one; both funnel into the same service calls.
func SetupRegistrationRoutes(router *gin.RouterGroup, controller Controller) {
	userScoped := router.Group("/users/:userId/registrations")
	{
		userScoped.POST("", controller.Register)             // POST /users/:userId/registrations - Register for event
		userScoped.GET("", controller.ListByUser)            // GET /users/:userId/registrations - List user's registrations
		userScoped.DELETE("/:eventId", controller.Unregister) // DELETE /users/:userId/registrations/:eventId - Cancel registration
	}

	eventScoped := router.Group("/events/:eventId/registrations")
	{
		eventScoped.POST("", controller.RegisterForEvent)             // POST /events/:eventId/registrations - Register user for event
		eventScoped.GET("", controller.ListByEvent)                   // GET /events/:eventId/registrations - List event's registrations
		eventScoped.DELETE("/:userId", controller.UnregisterFromEvent) // DELETE /events/:eventId/registrations/:userId - Cancel registration
	}
}
