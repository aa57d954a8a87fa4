// internal/handlers/events.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/veritrace/veritrace-backend/internal/services"
	"github.com/veritrace/veritrace-backend/internal/utils"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// ListEvents is the polling side of the change-notification contract.
// Callers keep the highest id they have seen and pass it as after_id.
func (h *EventHandler) ListEvents(c *gin.Context) {
	afterID, _ := strconv.ParseUint(c.DefaultQuery("after_id", "0"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.eventService.List(uint(afterID), limit)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch ledger events")
		return
	}

	nextCursor := uint(afterID)
	if len(events) > 0 {
		nextCursor = events[len(events)-1].ID
	}

	utils.SuccessResponseWithMeta(c, events, gin.H{
		"next_after_id": nextCursor,
	})
}
