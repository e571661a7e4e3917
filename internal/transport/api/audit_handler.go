package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	svs AuditServicer
}

func NewAuditHandler(svs AuditServicer) *AuditHandler {
	return &AuditHandler{
		svs: svs,
	}
}

// History GET AdminRouteGroup + AuditRoute.
func (a *AuditHandler) History(c *gin.Context) {
	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	entries, err := a.svs.History(reqCtx, c.Param("type"), targetID, limit)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		response[i] = AuditEntryResponse{
			ID:          e.ID,
			ActorID:     e.ActorID,
			Action:      e.Action,
			TargetType:  e.TargetType,
			TargetID:    e.TargetID,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, response)
}
