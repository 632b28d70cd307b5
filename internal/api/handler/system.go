package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veridex/veridex/consts"
)

// SystemHandler serves the service banner and liveness endpoints.
type SystemHandler struct{}

// NewSystemHandler creates a new system handler
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// Index handles GET / with a short service banner
func (h *SystemHandler) Index(c *gin.Context) {
	c.String(http.StatusOK, "%s %s — credibility review service. See %s",
		consts.ProjectName, consts.Version, consts.ProjectURL)
}

// Test handles GET /test
func (h *SystemHandler) Test(c *gin.Context) {
	c.String(http.StatusOK, "Hello World!")
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": consts.ServiceName,
		"version": consts.Version,
	})
}

// Uptime handles GET /api/v1/uptime
func (h *SystemHandler) Uptime(c *gin.Context) {
	uptime := consts.GetUptime()
	c.JSON(http.StatusOK, gin.H{
		"service":        consts.ServiceName,
		"version":        consts.Version,
		"started_at":     consts.GetStartedAt().UTC().Format(time.RFC3339),
		"uptime_seconds": int64(uptime.Seconds()),
		"uptime":         fmt.Sprintf("%v", uptime.Round(time.Second)),
	})
}
