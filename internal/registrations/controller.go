package registrations

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gatherly/internal/shared/apierr"
	"gatherly/internal/shared/validation"
)

type Controller interface {
	// User-centric surface
	Register(c *gin.Context)
	Unregister(c *gin.Context)
	ListByUser(c *gin.Context)

	// Event-centric aliases
	RegisterForEvent(c *gin.Context)
	UnregisterFromEvent(c *gin.Context)
	ListByEvent(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// Register handles POST /users/:userId/registrations.
func (ctrl *controller) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.NewValidation([]apierr.FieldDetail{
			{Field: "body", Message: "invalid JSON payload"},
		}))
		return
	}
	if err := validation.Struct(req); err != nil {
		apierr.Respond(c, err)
		return
	}

	reg, err := ctrl.service.Register(c.Request.Context(), c.Param("userId"), req.EventID)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, reg)
}

// Unregister handles DELETE /users/:userId/registrations/:eventId.
func (ctrl *controller) Unregister(c *gin.Context) {
	err := ctrl.service.Unregister(c.Request.Context(), c.Param("userId"), c.Param("eventId"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListByUser handles GET /users/:userId/registrations.
func (ctrl *controller) ListByUser(c *gin.Context) {
	list, err := ctrl.service.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// RegisterForEvent handles POST /events/:eventId/registrations.
func (ctrl *controller) RegisterForEvent(c *gin.Context) {
	var req EventRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.NewValidation([]apierr.FieldDetail{
			{Field: "body", Message: "invalid JSON payload"},
		}))
		return
	}
	if err := validation.Struct(req); err != nil {
		apierr.Respond(c, err)
		return
	}

	reg, err := ctrl.service.Register(c.Request.Context(), req.UserID, c.Param("eventId"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, reg)
}

// UnregisterFromEvent handles DELETE /events/:eventId/registrations/:userId.
func (ctrl *controller) UnregisterFromEvent(c *gin.Context) {
	err := ctrl.service.Unregister(c.Request.Context(), c.Param("userId"), c.Param("eventId"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListByEvent handles GET /events/:eventId/registrations.
func (ctrl *controller) ListByEvent(c *gin.Context) {
	list, err := ctrl.service.ListByEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}
