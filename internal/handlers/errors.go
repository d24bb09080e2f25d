package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accoumar12/dashboard/internal/models"
	"github.com/accoumar12/dashboard/internal/responses"
)

// fail maps a service error to an HTTP status following the error taxonomy:
// validation and path errors are the client's to fix, missing sessions are
// 404, a missing or broken schema is 503, everything else is 500.
func fail(c *gin.Context, err error, message string) {
	var (
		validationErr *models.FilterValidationError
		pathErr       *models.FilterPathError
		uploadErr     *models.UploadValidationError
		invalidErr    *models.InvalidSessionError
		notFoundErr   *models.SessionNotFoundError
		schemaErr     *models.SchemaExtractionError
	)

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &pathErr),
		errors.As(err, &uploadErr),
		errors.As(err, &invalidErr):
		responses.Fail(c, http.StatusBadRequest, err, message)
	case errors.As(err, &notFoundErr):
		responses.Fail(c, http.StatusNotFound, err, message)
	case errors.As(err, &schemaErr):
		responses.Fail(c, http.StatusServiceUnavailable, err, message)
	default:
		responses.Fail(c, http.StatusInternalServerError, err, message)
	}
}
