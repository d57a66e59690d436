package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gatherly/internal/shared/apierr"
)

type Controller interface {
	CreateUser(c *gin.Context)
	GetUser(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.NewValidation([]apierr.FieldDetail{
			{Field: "body", Message: "invalid JSON payload"},
		}))
		return
	}

	user, err := ctrl.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (ctrl *controller) GetUser(c *gin.Context) {
	user, err := ctrl.service.GetUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
