package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greenvvay/Parking/internal/domain"
)

type ParkingHandler struct {
	parkingService ParkingService
}

func NewParkingHandler(ps ParkingService) *ParkingHandler {
	return &ParkingHandler{parkingService: ps}
}

// POST /gates/entry/:gate
func (h *ParkingHandler) Enter(c *gin.Context) {
	gate, err := gateParam(c)
	if err != nil {
		badRequest(c, "invalid gate", err)
		return
	}
	var dto domain.EnterRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, "invalid payload", err)
		return
	}
	ts, err := parseTimestamp(dto.Timestamp)
	if err != nil {
		badRequest(c, "invalid timestamp", err)
		return
	}

	ticket, err := h.parkingService.Enter(c.Request.Context(), gate, dto.Vehicle, ts)
	if err != nil {
		respondError(c, "entry refused", err)
		return
	}
	c.JSON(http.StatusCreated, ticket.DTO())
}

// POST /gates/exit/:gate
func (h *ParkingHandler) Exit(c *gin.Context) {
	gate, err := gateParam(c)
	if err != nil {
		badRequest(c, "invalid gate", err)
		return
	}
	var dto domain.ExitRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, "invalid payload", err)
		return
	}
	ts, err := parseTimestamp(dto.Timestamp)
	if err != nil {
		badRequest(c, "invalid timestamp", err)
		return
	}

	if err := h.parkingService.Exit(c.Request.Context(), gate, dto.Vehicle, dto.TicketID, ts); err != nil {
		respondError(c, "exit refused", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "exit accepted", "ticket_id": dto.TicketID})
}

// GET /spaces
func (h *ParkingHandler) Spaces(c *gin.Context) {
	c.JSON(http.StatusOK, h.parkingService.Availability())
}

// GET /vehicles
func (h *ParkingHandler) Vehicles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"vehicles": h.parkingService.ActiveVehicles()})
}

// GET /tickets/:id/payment
func (h *ParkingHandler) Quote(c *gin.Context) {
	quote, err := h.parkingService.Quote(c.Param("id"))
	if err != nil {
		respondError(c, "cannot price ticket", err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// POST /tickets/:id/payment
func (h *ParkingHandler) Pay(c *gin.Context) {
	var dto domain.PaymentRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, "invalid payload", err)
		return
	}
	res, err := h.parkingService.Pay(c.Request.Context(), c.Param("id"), dto.Amount)
	if err != nil {
		respondError(c, "payment failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /tickets/:id/session
func (h *ParkingHandler) Session(c *gin.Context) {
	session, err := h.parkingService.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "cannot load session", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GET /sessions/active
func (h *ParkingHandler) ActiveSessions(c *gin.Context) {
	sessions, err := h.parkingService.ActiveSessions(c.Request.Context())
	if err != nil {
		respondError(c, "cannot list sessions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// GET /logs?from=&to=&source=archive
func (h *ParkingHandler) Logs(c *gin.Context) {
	var q domain.LogQueryDTO
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid query", err)
		return
	}
	from, to, err := logRange(q)
	if err != nil {
		badRequest(c, "invalid time range", err)
		return
	}

	if c.Query("source") == "archive" {
		logs, err := h.parkingService.ArchivedLogs(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, "cannot read archived logs", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
		return
	}
	logs := h.parkingService.Logs(from, to)
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

func gateParam(c *gin.Context) (int, error) {
	gate, err := strconv.Atoi(c.Param("gate"))
	if err != nil {
		return 0, fmt.Errorf("gate %q is not a number", c.Param("gate"))
	}
	return gate, nil
}

// parseTimestamp returns the zero time for an empty string, which the
// facility replaces with its clock.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// logRange defaults to the whole log.
func logRange(q domain.LogQueryDTO) (time.Time, time.Time, error) {
	from := time.Time{}
	to := time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	var err error
	if q.From != "" {
		if from, err = time.Parse(time.RFC3339Nano, q.From); err != nil {
			return from, to, err
		}
	}
	if q.To != "" {
		if to, err = time.Parse(time.RFC3339Nano, q.To); err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}
