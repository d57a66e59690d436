package events

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gatherly/internal/shared/apierr"
)

type Controller interface {
	CreateEvent(c *gin.Context)
	GetEvent(c *gin.Context)
	ListEvents(c *gin.Context)
	UpdateEvent(c *gin.Context)
	DeleteEvent(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.NewValidation([]apierr.FieldDetail{
			{Field: "body", Message: "invalid JSON payload"},
		}))
		return
	}

	event, err := ctrl.service.CreateEvent(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (ctrl *controller) GetEvent(c *gin.Context) {
	event, err := ctrl.service.GetEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (ctrl *controller) ListEvents(c *gin.Context) {
	events, err := ctrl.service.ListEvents(c.Request.Context(), c.Query("status"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  len(events),
	})
}

func (ctrl *controller) UpdateEvent(c *gin.Context) {
	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.NewValidation([]apierr.FieldDetail{
			{Field: "body", Message: "invalid JSON payload"},
		}))
		return
	}

	event, err := ctrl.service.UpdateEvent(c.Request.Context(), c.Param("eventId"), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (ctrl *controller) DeleteEvent(c *gin.Context) {
	if err := ctrl.service.DeleteEvent(c.Request.Context(), c.Param("eventId")); err != nil {
		apierr.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
