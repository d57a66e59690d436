package apierr

import (
	"time"

	"github.com/gin-gonic/gin"

	"gatherly/internal/shared/middleware"
)

// envelope is the wire format for all error responses.
type envelope struct {
	Error body `json:"error"`
}

type body struct {
	Code      Code          `json:"code"`
	Message   string        `json:"message"`
	Details   []FieldDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Path      string        `json:"path"`
	RequestID string        `json:"requestId"`
}

// Respond classifies err and writes the error envelope.
func Respond(c *gin.Context, err error) {
	e := From(err)

	c.JSON(e.Status(), envelope{
		Error: body{
			Code:      e.Code,
			Message:   e.Message,
			Details:   e.Details,
			Timestamp: time.Now().UTC(),
			Path:      c.Request.URL.Path,
			RequestID: middleware.GetRequestID(c),
		},
	})
}
