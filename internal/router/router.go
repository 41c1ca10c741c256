package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/haven-dev/haven/internal/handlers"
	"github.com/haven-dev/haven/internal/middleware"
	"github.com/haven-dev/haven/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.APIKeyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:space_id", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.PATCH("/me", middleware.AuthMiddleware(), handlers.UpdateUser)
		}

		// Hub-facing endpoints, authenticated by API key
		hub := api.Group("/hub", middleware.APIKeyMiddleware())
		{
			hub.POST("/devices", handlers.RegisterDeviceFromHub)
			hub.POST("/events", handlers.CreateEventFromHub)
		}

		spaces := api.Group("/spaces", middleware.AuthMiddleware())
		{
			spaces.POST("", handlers.CreateSpace)
			spaces.GET("", handlers.ListSpaces)
			spaces.GET("/:space_id", handlers.GetSpace)
			spaces.PATCH("/:space_id", handlers.UpdateSpace)
			spaces.DELETE("/:space_id", handlers.DeleteSpace)

			// Hub endpoints
			spaces.POST("/:space_id/hubs", handlers.CreateHub)
			spaces.GET("/:space_id/hubs", handlers.ListHubs)
			spaces.GET("/:space_id/hubs/:hub_id", handlers.GetHub)
			spaces.PATCH("/:space_id/hubs/:hub_id", handlers.UpdateHub)
			spaces.DELETE("/:space_id/hubs/:hub_id", handlers.DeleteHub)

			// Device endpoints
			spaces.POST("/:space_id/devices", handlers.CreateDevice)
			spaces.GET("/:space_id/devices", handlers.ListDevices)
			spaces.GET("/:space_id/devices/:device_id", handlers.GetDevice)
			spaces.PATCH("/:space_id/devices/:device_id", handlers.UpdateDevice)
			spaces.DELETE("/:space_id/devices/:device_id", handlers.DeleteDevice)
			spaces.GET("/:space_id/devices/:device_id/events", handlers.ListDeviceEvents)

			// Event endpoints
			spaces.GET("/:space_id/events", handlers.ListSpaceEvents)

			// Incident endpoints
			spaces.GET("/:space_id/incidents", handlers.ListIncidents)
			spaces.GET("/:space_id/incidents/:incident_id", handlers.GetIncident)
			spaces.PUT("/:space_id/incidents/:incident_id", handlers.UpdateIncidentStatus)
		}
	}

	return r
}
