package handler

import (
	"context"
	"net/http"
	"time"

	"tallypos/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health checks DB and Redis connectivity and reports the payment gateway
// breaker state. Never exposes credentials or internals. The gateway being
// open degrades the report but does not fail it — cash sales still work.
func Health(db *gorm.DB, rdb *redis.Client, gateway *infra.GatewayClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		gatewayStatus := "not_configured"
		if gateway != nil {
			gatewayStatus = gateway.BreakerState().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":      status == http.StatusOK,
			"db":      dbStatus,
			"redis":   redisStatus,
			"gateway": gatewayStatus,
		})
	}
}
