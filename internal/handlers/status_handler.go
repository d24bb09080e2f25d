package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accoumar12/dashboard/internal/database"
	"github.com/accoumar12/dashboard/internal/responses"
	"github.com/accoumar12/dashboard/internal/services"
)

type StatusHandler struct {
	datasets *services.DatasetService
}

func NewStatusHandler(datasets *services.DatasetService) *StatusHandler {
	return &StatusHandler{datasets: datasets}
}

// Health handles GET /api/v1/health.
func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DBStatus handles GET /api/v1/db-status, pinging the active dataset handle.
func (h *StatusHandler) DBStatus(c *gin.Context) {
	snap := h.datasets.Current()
	connected := false
	if snap != nil {
		connected = database.Ping(c.Request.Context(), snap.DB) == nil
	}

	responses.Success(c, http.StatusOK, gin.H{
		"connected": connected,
	}, "Database status retrieved")
}
