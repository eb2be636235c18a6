package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/service"
)

// MinPlateConfidence is the Rekognition confidence (0-100) above which a
// camera read opens the gate without an operator.
const MinPlateConfidence float32 = 80

// GateEventHandler admits vehicles identified by the entry camera.
type GateEventHandler struct {
	lprService     LPRService
	parkingService ParkingService
}

func NewGateEventHandler(lprService LPRService, parkingService ParkingService) *GateEventHandler {
	return &GateEventHandler{lprService: lprService, parkingService: parkingService}
}

// POST /gates/entry/:gate/lpr
func (h *GateEventHandler) EnterByPlate(c *gin.Context) {
	gate, err := gateParam(c)
	if err != nil {
		badRequest(c, "invalid gate", err)
		return
	}
	var req domain.LPREntryRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload", err)
		return
	}
	ts, err := parseTimestamp(req.Timestamp)
	if err != nil {
		badRequest(c, "invalid timestamp", err)
		return
	}

	resp := domain.LPREntryResponseDTO{}
	switch {
	case req.ManualPlate != "":
		resp.DetectedPlate = strings.ToUpper(strings.TrimSpace(req.ManualPlate))
		resp.Confidence = 100
		resp.IsManual = true
	case req.ImageBase64 != "":
		imageBytes, err := decodeImage(req.ImageBase64)
		if err != nil {
			badRequest(c, "invalid image", err)
			return
		}
		plate, confidence, err := h.lprService.ProcessImageForLPR(c.Request.Context(), imageBytes)
		if errors.Is(err, service.ErrPlateNotFound) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":                 err.Error(),
				"requires_manual_input": true,
			})
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "plate recognition failed", "details": err.Error()})
			return
		}
		resp.DetectedPlate, resp.Confidence = plate, confidence
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_base64 or manual_plate is required"})
		return
	}

	if !resp.IsManual && resp.Confidence < MinPlateConfidence {
		resp.RequiresConfirmation = true
		c.JSON(http.StatusOK, resp)
		return
	}

	vehicle := domain.VehicleInfo{ID: resp.DetectedPlate, Class: req.Class}
	ticket, err := h.parkingService.Enter(c.Request.Context(), gate, vehicle, ts)
	if err != nil {
		respondError(c, "entry refused", err)
		return
	}
	dto := ticket.DTO()
	resp.Ticket = &dto
	c.JSON(http.StatusCreated, resp)
}

// decodeImage accepts plain base64 or a data URL.
func decodeImage(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	imageBytes, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(imageBytes) == 0 {
		return nil, errors.New("empty image")
	}
	return imageBytes, nil
}
