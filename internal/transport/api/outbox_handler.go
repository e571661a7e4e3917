package api

import (
	"context"
	"net/http"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/service"
	"github.com/fsdevblog/groph-ledger/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OutboxHandler struct {
	svs OutboxServicer
}

func NewOutboxHandler(svs OutboxServicer) *OutboxHandler {
	return &OutboxHandler{
		svs: svs,
	}
}

// Index GET AdminRouteGroup + OutboxRoute. Filters by the status query parameter, failed by default.
func (o *OutboxHandler) Index(c *gin.Context) {
	status := domain.OutboxStatus(c.DefaultQuery("status", string(domain.OutboxStatusFailed)))
	if !status.Valid() {
		middlewares.AbortWithError(c, http.StatusUnprocessableEntity, "invalid status")
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	events, err := o.svs.List(reqCtx, status, limit)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := make([]OutboxEventResponse, len(events))
	for i := range events {
		response[i] = newOutboxEventResponse(&events[i])
	}
	c.JSON(http.StatusOK, response)
}

type ResendResponse struct {
	Event    OutboxEventResponse `json:"event"`
	Warnings []string            `json:"warnings,omitempty"`
}

// Resend POST AdminRouteGroup + OutboxResendRoute.
func (o *OutboxHandler) Resend(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middlewares.AbortWithError(c, http.StatusNotFound, "not found")
		return
	}

	// delivery is attempted inline, give it the notification budget on top
	reqCtx, cancel := context.WithTimeout(c, 2*DefaultServiceTimeout)
	defer cancel()

	result, err := o.svs.Resend(reqCtx, service.ResendCommand{
		ActorID: getUserIDFromContext(c),
		EventID: eventID,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ResendResponse{
		Event:    newOutboxEventResponse(result.Event),
		Warnings: warningsText(result.Warnings),
	})
}
