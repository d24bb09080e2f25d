package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/accoumar12/dashboard/internal/models"
	"github.com/accoumar12/dashboard/internal/responses"
	"github.com/accoumar12/dashboard/internal/services"
)

type QueryHandler struct {
	queryService *services.QueryService
}

func NewQueryHandler(queryService *services.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// Query handles POST /api/v1/query: a filtered, sorted, paginated page of
// rows from one table of the active dataset.
func (h *QueryHandler) Query(c *gin.Context) {
	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid query request")
		return
	}

	result, err := h.queryService.Query(c.Request.Context(), &req)
	if err != nil {
		fail(c, err, "Query failed")
		return
	}

	responses.Success(c, http.StatusOK, result, "Query executed successfully")
}

// DistinctValues handles GET /api/v1/tables/:table/columns/:column/values.
func (h *QueryHandler) DistinctValues(c *gin.Context) {
	table := c.Param("table")
	column := c.Param("column")

	limit, err := strconv.ParseUint(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid limit parameter")
		return
	}

	values, err := h.queryService.DistinctColumnValues(c.Request.Context(), table, column, limit)
	if err != nil {
		fail(c, err, "Failed to fetch column values")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"table":  table,
		"column": column,
		"values": values,
	}, "Column values retrieved successfully")
}
