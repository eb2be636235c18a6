package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenvvay/Parking/internal/repository"
)

type GateControllerHandler struct {
	controllers GateControllerStore
}

func NewGateControllerHandler(store GateControllerStore) *GateControllerHandler {
	return &GateControllerHandler{controllers: store}
}

// GET /controllers
func (h *GateControllerHandler) List(c *gin.Context) {
	controllers, err := h.controllers.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list gate controllers", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"controllers": controllers, "count": len(controllers)})
}

// GET /controllers/:thing_name
func (h *GateControllerHandler) Get(c *gin.Context) {
	gc, err := h.controllers.FindByThingName(c.Request.Context(), c.Param("thing_name"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "gate controller not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load gate controller", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gc)
}
