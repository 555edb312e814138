package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raid-scout/backend/pkg/apperr"
)

// ErrorBody is the machine-readable error inside the envelope.
type ErrorBody struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

// ErrorEnvelope is the JSON error envelope: {"error": {"code", "message"}}.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends the error envelope with the status of the error's code.
// Non-application errors are surfaced as a generic INTERNAL.
func Error(c *gin.Context, err error) {
	e := apperr.From(err)
	c.JSON(e.Code.HTTPStatus(), ErrorEnvelope{Error: ErrorBody{Code: e.Code, Message: e.Message}})
}

// AbortError sends the error envelope and aborts the handler chain.
func AbortError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
