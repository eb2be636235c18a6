package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greenvvay/Parking/internal/domain"
)

type IoTCommandHandler struct {
	commander BarrierCommander
}

func NewIoTCommandHandler(commander BarrierCommander) *IoTCommandHandler {
	return &IoTCommandHandler{commander: commander}
}

type ControlBarrierRequest struct {
	Direction domain.GateDirection `json:"direction" binding:"required,oneof=entry exit"`
	Gate      *int                 `json:"gate" binding:"required,gte=0"`
	Command   string               `json:"command" binding:"required,oneof=open close"`
}

// POST /iot/commands/barrier opens or closes a barrier by hand; the facility
// state is not touched.
func (h *IoTCommandHandler) ControlBarrier(c *gin.Context) {
	var req ControlBarrierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload", err)
		return
	}

	requestID := uuid.New().String()
	err := h.commander.SendBarrierCommand(c.Request.Context(), domain.BarrierControlCommandPayload{
		Command:   req.Command,
		Direction: req.Direction,
		Gate:      *req.Gate,
		RequestID: requestID,
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not send barrier command", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "barrier command sent", "request_id": requestID})
}
