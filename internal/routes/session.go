package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/accoumar12/dashboard/internal/handlers"
)

type SessionRoutes struct {
	handler *handlers.SessionHandler
}

func NewSessionRoutes(handler *handlers.SessionHandler) *SessionRoutes {
	return &SessionRoutes{handler: handler}
}

func (r *SessionRoutes) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	{
		sessions.POST("/upload", r.handler.Upload)
		sessions.POST("/:id/activate", r.handler.Activate)
		sessions.GET("", r.handler.List)
		sessions.DELETE("/:id", r.handler.Delete)
	}
}
