package handlers

import (
	"net/http"

	"shop-realtime-api/internal/realtime"

	"github.com/gin-gonic/gin"
)

// NotifyRequest represents a server-originated push request from the REST
// side. Exactly one of UserID or RoomID selects the destination scope.
type NotifyRequest struct {
	Namespace string `json:"namespace"`
	UserID    string `json:"userId"`
	RoomID    string `json:"roomId"`
	Event     string `json:"event"`
	Message   any    `json:"message" binding:"required"`
}

// NotificationPayload is what the resolved connections receive.
type NotificationPayload struct {
	Message any `json:"message"`
}

// Notify returns the handler bridging REST to the realtime push primitives.
// Delivery is best-effort: a destination with no live connections is not an
// error.
// POST /api/notify
func Notify(rt *realtime.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NotifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. A message is required."})
			return
		}
		if (req.UserID == "") == (req.RoomID == "") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Exactly one of userId or roomId is required."})
			return
		}

		namespace := req.Namespace
		if namespace == "" {
			namespace = realtime.NamespaceUser
		}
		if rt.Namespace(namespace) == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown namespace."})
			return
		}

		event := req.Event
		if event == "" {
			event = "notification"
		}

		payload := NotificationPayload{Message: req.Message}
		var delivered int
		if req.UserID != "" {
			delivered = rt.SendToUser(namespace, req.UserID, event, payload)
		} else {
			delivered = rt.SendToRoom(namespace, req.RoomID, event, payload)
		}

		c.JSON(http.StatusAccepted, gin.H{
			"status":    "accepted",
			"delivered": delivered,
		})
	}
}
