package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"webinar-counter-backend/internal/timeline"
)

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Read())
}

// PutSettings handles PUT /api/settings. Invalid timeline points and
// annotations are dropped, not rejected; the response echoes what was
// actually stored.
func (h *Handler) PutSettings(c *gin.Context) {
	var candidate timeline.Config
	if err := c.ShouldBindJSON(&candidate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	accepted := h.settings.Write(candidate)
	c.JSON(http.StatusOK, accepted)
}
