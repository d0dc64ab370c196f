package endpoints

import (
	"context"
	"net/http"
	"time"

	"flowcore"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
)

func HealthHandler(router *graceful.Graceful) {
	router.GET("/health", health)
}

func health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok", "redis": "ok", "nats": "disabled"}
	status := http.StatusOK

	if sqlDB, err := flowcore.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "down"
		status = http.StatusServiceUnavailable
	}
	if err := flowcore.Redis.Ping(ctx).Err(); err != nil {
		// Drafts are best effort, the API still serves without them.
		checks["redis"] = "down"
	}
	if flowcore.Nats != nil {
		checks["nats"] = flowcore.Nats.Status().String()
	}

	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
}
