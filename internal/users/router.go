package users

import (
	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(router *gin.RouterGroup, controller Controller) {
	users := router.Group("/users")
	{
		users.POST("", controller.CreateUser)       // POST /users - Create user
		users.GET("/:userId", controller.GetUser)   // GET /users/:userId - Get user
	}
}
