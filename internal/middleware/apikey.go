package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haven-dev/haven/db"
	"github.com/haven-dev/haven/internal/models"
	"github.com/haven-dev/haven/internal/types"
)

const APIKeyHeader = "X-API-Key"

// APIKeyMiddleware authenticates a hub by its API key and stores the hub
// record in the request context.
func APIKeyMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		apiKey := ctx.GetHeader(APIKeyHeader)

		if apiKey == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key is required"})
			return
		}

		var hub models.Hub

		if err := db.DB.Where("api_key = ?", apiKey).First(&hub).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}

		if !hub.IsActive {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Hub is deactivated"})
			return
		}

		ctx.Set(types.ContextHubKey, hub)
		ctx.Next()
	}
}
