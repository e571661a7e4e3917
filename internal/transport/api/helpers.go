package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const maxListLimit = 1000

// getUserIDFromContext returns the id stored by middlewares.AuthRequired, or 0.
func getUserIDFromContext(c *gin.Context) int64 {
	userID, exist := c.Get(middlewares.CurrentUserIDKey)
	if !exist {
		return 0
	}
	id, ok := userID.(int64)
	if !ok {
		return 0
	}
	return id
}

// statusFromError maps the domain error taxonomy to HTTP statuses.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortWithServiceError aborts with the status of err. Domain errors are shown to the client, anything else
// is hidden behind the status text.
func abortWithServiceError(c *gin.Context, err error) {
	status := statusFromError(err)
	errType := gin.ErrorTypePublic
	if status == http.StatusInternalServerError {
		errType = gin.ErrorTypePrivate
	}
	_ = c.AbortWithError(status, err).SetType(errType)
}

// bindJSON binds the request body into params. Validation failures are answered with 422, malformed bodies
// with 400.
func bindJSON(c *gin.Context, params any) bool {
	bindErr := c.ShouldBindJSON(params)
	if bindErr == nil {
		return true
	}
	var valErrs validator.ValidationErrors
	if errors.As(bindErr, &valErrs) {
		middlewares.AbortWithError(c, http.StatusUnprocessableEntity, valErrs.Error())
		return false
	}
	_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
	return false
}

// paramID parses a positive int64 path parameter. It aborts with 404 otherwise.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middlewares.AbortWithError(c, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

// paramOrder parses the :kind and :id path parameters of order routes.
func paramOrder(c *gin.Context) (domain.OrderKind, int64, bool) {
	kind := domain.OrderKind(c.Param("kind"))
	if !kind.Valid() {
		middlewares.AbortWithError(c, http.StatusNotFound, "not found")
		return "", 0, false
	}
	id, ok := paramID(c, "id")
	return kind, id, ok
}

// queryLimit reads the optional limit query parameter. Zero means the service default.
func queryLimit(c *gin.Context) (uint, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || limit > maxListLimit {
		middlewares.AbortWithError(c, http.StatusUnprocessableEntity, "invalid limit")
		return 0, false
	}
	return uint(limit), true
}

// warningsText renders notification failures for the response body.
func warningsText(warnings []error) []string {
	if len(warnings) == 0 {
		return nil
	}
	result := make([]string, len(warnings))
	for i, w := range warnings {
		result[i] = w.Error()
	}
	return result
}
