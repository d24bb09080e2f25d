package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accoumar12/dashboard/internal/handlers"
	"github.com/accoumar12/dashboard/internal/services"
)

func RegisterRoutes(
	router *gin.Engine,
	datasets *services.DatasetService,
	statusHandler *handlers.StatusHandler,
	schemaHandler *handlers.SchemaHandler,
	queryHandler *handlers.QueryHandler,
	sessionHandler *handlers.SessionHandler,
) {
	api := router.Group("/api/v1")

	api.GET("/health", statusHandler.Health)
	api.GET("/db-status", statusHandler.DBStatus)

	schemaRoutes := NewSchemaRoutes(schemaHandler, datasets)
	schemaRoutes.RegisterRoutes(api)

	queryRoutes := NewQueryRoutes(queryHandler, datasets)
	queryRoutes.RegisterRoutes(api)

	sessionRoutes := NewSessionRoutes(sessionHandler)
	sessionRoutes.RegisterRoutes(api)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
