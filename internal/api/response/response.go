// Package response writes the JSON envelope every endpoint answers with.
package response

import (
	"net/http"
	"runtime/debug"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// Envelope is {success, data?, message?, pagination?}. Errors and Stack only appear on failures.
type Envelope struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data,omitempty"`
	Message    string              `json:"message,omitempty"`
	Pagination *models.Pagination  `json:"pagination,omitempty"`
	Errors     []apperr.FieldError `json:"errors,omitempty"`
	Stack      string              `json:"stack,omitempty"`
}

func OK(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

func Created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

func Page(c *gin.Context, data any, pagination models.Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: &pagination})
}

// Error maps err onto its status and aborts the chain. Unexpected errors carry a stack
// trace unless gin runs in release mode.
func Error(c *gin.Context, err error) {
	e := apperr.From(err)
	status := e.HTTPStatus()
	body := Envelope{Success: false, Message: e.Message, Errors: e.Fields}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		if gin.Mode() != gin.ReleaseMode {
			body.Stack = string(debug.Stack())
		}
	}
	c.AbortWithStatusJSON(status, body)
}
