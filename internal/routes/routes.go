package routes

import (
	"shop-realtime-api/internal/handlers"
	"shop-realtime-api/internal/middleware"
	"shop-realtime-api/internal/realtime"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the REST surface and the websocket endpoints. The
// realtime server is passed in explicitly; nothing here reaches for a global.
func SetupRoutes(rt *realtime.Server) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, token")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204) // This depends on the implementation of the frontend
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Server Shop Realtime API is running in Health Check Endpoint",
		})
	})

	// Websocket endpoints; the handshake carries its own credential, so these
	// bypass the REST auth middleware.
	ginRouter.GET("/ws/admin", rt.HandlerFor(realtime.NamespaceAdmin))
	ginRouter.GET("/ws/user", rt.HandlerFor(realtime.NamespaceUser))

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/user/login", handlers.Login)
		api.POST("/user/signup", handlers.Signup)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Users endpoint
		protectedRoutes.GET("/users", handlers.GetAllUsers)
		// Server-originated realtime notifications
		protectedRoutes.POST("/notify", handlers.Notify(rt))
	}

	return ginRouter
}
