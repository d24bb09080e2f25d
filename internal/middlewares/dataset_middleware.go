package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accoumar12/dashboard/internal/responses"
	"github.com/accoumar12/dashboard/internal/services"
)

// RequireDataset rejects requests until a dataset has been activated. Routes
// behind it can assume a non-nil snapshot.
func RequireDataset(datasets *services.DatasetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if datasets.Current() == nil {
			responses.Fail(c, http.StatusServiceUnavailable, nil, "No active dataset")
			c.Abort()
			return
		}
		c.Next()
	}
}
