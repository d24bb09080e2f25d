package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accoumar12/dashboard/internal/responses"
	"github.com/accoumar12/dashboard/internal/services"
)

type SchemaHandler struct {
	datasets *services.DatasetService
}

func NewSchemaHandler(datasets *services.DatasetService) *SchemaHandler {
	return &SchemaHandler{datasets: datasets}
}

// GetSchema handles GET /api/v1/schema. It serializes the active snapshot's
// schema: tables with columns plus the foreign key relationships.
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	snap := h.datasets.Current()

	responses.Success(c, http.StatusOK, gin.H{
		"tables":        snap.Schema.Tables,
		"relationships": snap.Schema.Relationships,
		"version":       snap.Version,
	}, "Schema retrieved successfully")
}

// GetRelatedTables handles GET /api/v1/tables/:table/related.
func (h *SchemaHandler) GetRelatedTables(c *gin.Context) {
	snap := h.datasets.Current()
	table := c.Param("table")

	if snap.Schema.Table(table) == nil {
		responses.Fail(c, http.StatusNotFound, nil, "Table not found")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"table":   table,
		"related": snap.Graph.GetRelatedTables(table),
	}, "Related tables retrieved successfully")
}
