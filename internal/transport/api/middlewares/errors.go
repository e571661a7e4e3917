package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request. Code is stable for clients, Error is for people.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type statusError struct {
	code string
	text string
}

var statusErrors = map[int]statusError{
	http.StatusBadRequest:          {code: "bad_request", text: "bad request"},
	http.StatusUnauthorized:        {code: "unauthorized", text: "unauthorized"},
	http.StatusPaymentRequired:     {code: "insufficient_funds", text: "insufficient funds"},
	http.StatusForbidden:           {code: "forbidden", text: "forbidden"},
	http.StatusNotFound:            {code: "not_found", text: "not found"},
	http.StatusConflict:            {code: "conflict", text: "conflict"},
	http.StatusUnprocessableEntity: {code: "validation", text: "unprocessable entity"},
}

var internalError = statusError{code: "internal", text: "internal server error"}

func statusErrorFor(status int) statusError {
	if e, ok := statusErrors[status]; ok {
		return e
	}
	return internalError
}

// AbortWithError stops the chain and writes an ErrorResponse for status with msg as is.
func AbortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: statusErrorFor(status).code, Error: msg})
}

// Errors renders the first error attached to the context as ErrorResponse. Public errors keep their
// message, the rest get the status text. Plain text is only written to clients asking for it.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// the handler already rendered a body
		if len(c.Errors) == 0 || c.Writer.Size() > 0 {
			return
		}

		status := c.Writer.Status()
		known := statusErrorFor(status)
		msg := known.text
		if first := c.Errors[0]; first.IsType(gin.ErrorTypePublic) {
			msg = first.Error()
		}

		accept := c.GetHeader("Accept")
		if strings.Contains(accept, "text/plain") && !strings.Contains(accept, "application/json") {
			c.String(status, msg)
		} else {
			c.JSON(status, ErrorResponse{Code: known.code, Error: msg})
		}
		c.Abort()
	}
}
