package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accoumar12/dashboard/internal/responses"
	"github.com/accoumar12/dashboard/internal/services"
)

type SessionHandler struct {
	sessions *services.SessionService
	uploads  *services.UploadService
}

func NewSessionHandler(sessions *services.SessionService, uploads *services.UploadService) *SessionHandler {
	return &SessionHandler{sessions: sessions, uploads: uploads}
}

// Upload handles POST /api/v1/sessions/upload. A successful upload activates
// the dataset before responding, so the client can query it immediately.
func (h *SessionHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Missing file field in upload")
		return
	}

	info, err := h.uploads.HandleUpload(c.Request.Context(), file)
	if err != nil {
		fail(c, err, "Upload rejected")
		return
	}

	responses.Success(c, http.StatusCreated, info, "Database uploaded and activated")
}

// Activate handles POST /api/v1/sessions/:id/activate, switching the active
// dataset to a previously uploaded session (or the playground).
func (h *SessionHandler) Activate(c *gin.Context) {
	sessionID := c.Param("id")

	snap, err := h.sessions.Activate(c.Request.Context(), sessionID)
	if err != nil {
		fail(c, err, "Failed to activate session")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"session_id": snap.SessionID,
		"version":    snap.Version,
		"tables":     len(snap.Schema.Tables),
	}, "Session activated")
}

// List handles GET /api/v1/sessions.
func (h *SessionHandler) List(c *gin.Context) {
	responses.Success(c, http.StatusOK, gin.H{
		"sessions": h.sessions.List(),
	}, "Sessions retrieved successfully")
}

// Delete handles DELETE /api/v1/sessions/:id.
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		fail(c, err, "Failed to delete session")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Session deleted")
}
