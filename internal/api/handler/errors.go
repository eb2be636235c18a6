package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenvvay/Parking/internal/domain"
)

// statusOf maps facility outcomes onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoCapacity),
		errors.Is(err, domain.ErrAlreadyParked),
		errors.Is(err, domain.ErrTicketMismatch),
		errors.Is(err, domain.ErrTicketAlreadyUsed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidGate),
		errors.Is(err, domain.ErrInvalidVehicle),
		errors.Is(err, domain.ErrInvalidTariff):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrHistoryUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, msg string, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": msg, "details": err.Error()})
}

func badRequest(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "details": err.Error()})
}
