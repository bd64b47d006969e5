package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"webinar-counter-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, rateLimit rate.Limit, burst int) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(mw.RateLimiter(rateLimit, burst))
	{
		api.POST("/jobs", handler.SubmitJob)
		api.GET("/jobs/:id/events", handler.StreamEvents)
		api.GET("/jobs/:id/result", handler.GetResult)

		api.GET("/settings", handler.GetSettings)
		api.PUT("/settings", handler.PutSettings)

		api.GET("/reports/:name", handler.DownloadReport)
	}

	return r
}
