package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/accoumar12/dashboard/internal/handlers"
	"github.com/accoumar12/dashboard/internal/middlewares"
	"github.com/accoumar12/dashboard/internal/services"
)

type QueryRoutes struct {
	handler  *handlers.QueryHandler
	datasets *services.DatasetService
}

func NewQueryRoutes(handler *handlers.QueryHandler, datasets *services.DatasetService) *QueryRoutes {
	return &QueryRoutes{handler: handler, datasets: datasets}
}

func (r *QueryRoutes) RegisterRoutes(router *gin.RouterGroup) {
	query := router.Group("")
	query.Use(middlewares.RequireDataset(r.datasets))
	{
		query.POST("/query", r.handler.Query)
		query.GET("/tables/:table/columns/:column/values", r.handler.DistinctValues)
	}
}
