package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/tariffs"
)

const maxTariffBody = 1 << 20

type TariffHandler struct {
	parkingService ParkingService
}

func NewTariffHandler(ps ParkingService) *TariffHandler {
	return &TariffHandler{parkingService: ps}
}

// GET /tariff. With ?format=yaml the tariff is returned in the file format.
func (h *TariffHandler) Get(c *gin.Context) {
	t, ok := h.parkingService.Tariff()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no tariff installed"})
		return
	}
	if c.Query("format") == "yaml" {
		c.Header("Content-Type", "application/yaml")
		c.Status(http.StatusOK)
		if err := tariffs.Encode(c.Writer, t); err != nil {
			_ = c.Error(err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"tariff": t})
}

// PUT /tariff accepts a JSON week (7 day arrays) or, with a YAML content
// type, the tariff file format.
func (h *TariffHandler) Put(c *gin.Context) {
	var (
		t   domain.Tariff
		err error
	)
	if isYAML(c.ContentType()) {
		var body []byte
		body, err = io.ReadAll(io.LimitReader(c.Request.Body, maxTariffBody))
		if err == nil {
			t, err = tariffs.Parse(body)
		}
	} else {
		err = c.ShouldBindJSON(&t)
	}
	if err != nil {
		badRequest(c, "invalid tariff", err)
		return
	}

	version, err := h.parkingService.SetTariff(c.Request.Context(), t)
	if err != nil {
		respondError(c, "tariff rejected", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "tariff installed", "version": version})
}

func isYAML(contentType string) bool {
	return strings.HasSuffix(contentType, "/yaml") || strings.HasSuffix(contentType, "/x-yaml")
}
