package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/service"
)

type LPRHandler struct {
	lprService LPRService
}

func NewLPRHandler(lprService LPRService) *LPRHandler {
	return &LPRHandler{lprService: lprService}
}

// POST /lpr/process-image
func (h *LPRHandler) ProcessImage(c *gin.Context) {
	var req domain.LPRRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload", err)
		return
	}

	imageBytes, err := decodeImage(req.ImageBase64)
	if err != nil {
		badRequest(c, "invalid image", err)
		return
	}

	plate, confidence, err := h.lprService.ProcessImageForLPR(c.Request.Context(), imageBytes)
	if errors.Is(err, service.ErrPlateNotFound) {
		c.JSON(http.StatusOK, domain.LPRResponseDTO{ErrorMessage: err.Error()})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "plate recognition failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, domain.LPRResponseDTO{DetectedPlate: plate, Confidence: confidence})
}
