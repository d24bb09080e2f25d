package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/accoumar12/dashboard/internal/handlers"
	"github.com/accoumar12/dashboard/internal/middlewares"
	"github.com/accoumar12/dashboard/internal/services"
)

type SchemaRoutes struct {
	handler  *handlers.SchemaHandler
	datasets *services.DatasetService
}

func NewSchemaRoutes(handler *handlers.SchemaHandler, datasets *services.DatasetService) *SchemaRoutes {
	return &SchemaRoutes{handler: handler, datasets: datasets}
}

func (r *SchemaRoutes) RegisterRoutes(router *gin.RouterGroup) {
	schema := router.Group("/schema")
	schema.Use(middlewares.RequireDataset(r.datasets))
	{
		schema.GET("", r.handler.GetSchema)
		schema.GET("/tables/:table/related", r.handler.GetRelatedTables)
	}
}
