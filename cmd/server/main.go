package main

import (
	"log"
	"os"

	"shop-realtime-api/internal/database"
	"shop-realtime-api/internal/realtime"
	"shop-realtime-api/internal/routes"
)

func main() {
	// Init database
	database.InitDB()

	// Build the realtime server with its handshake verifier
	verifier := realtime.NewTokenVerifier(database.GetDB())
	rtServer := realtime.NewServer(verifier)

	// Setup the routes (public, protected and websocket routes)
	ginRoutes := routes.SetupRoutes(rtServer)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8008"
	}
	log.Printf("Server starting on port :%s", port)
	log.Println("API endpoints:")
	log.Println("  POST   /api/user/login")
	log.Println("  POST   /api/user/signup")
	log.Println("  GET    /api/users")
	log.Println("  POST   /api/notify")
	log.Println("  GET    /ws/admin")
	log.Println("  GET    /ws/user")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
