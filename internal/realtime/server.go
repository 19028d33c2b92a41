package realtime

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Namespace paths served by every Server.
const (
	NamespaceAdmin = "/admin"
	NamespaceUser  = "/user"
)

// Server hosts the realtime namespaces. It is constructed explicitly and
// passed to whoever needs the push primitives; there is no package-level
// instance.
type Server struct {
	verifier   Verifier
	upgrader   websocket.Upgrader
	namespaces map[string]*Namespace
}

// NewServer builds a Server with the /admin and /user namespaces wired to the
// given verifier.
func NewServer(verifier Verifier) *Server {
	s := &Server{
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// CORS is already handled at Gin level; allow upgrade from any origin here
				return true
			},
		},
		namespaces: make(map[string]*Namespace),
	}
	for _, name := range []string{NamespaceAdmin, NamespaceUser} {
		s.namespaces[name] = newNamespace(name)
	}
	return s
}

// Namespace returns a namespace by path, or nil if it does not exist.
func (s *Server) Namespace(name string) *Namespace {
	return s.namespaces[name]
}

// HandlerFor returns the gin handler running the handshake and connection
// lifecycle for one namespace. The credential comes from the "token" header,
// with a query-param fallback for browser clients that cannot set headers on
// a websocket dial. Rejection happens before the upgrade, so a failed
// handshake never touches the registry.
func (s *Server) HandlerFor(name string) gin.HandlerFunc {
	ns := s.namespaces[name]
	return func(c *gin.Context) {
		credential := c.GetHeader("token")
		if credential == "" {
			credential = c.Query("token")
		}
		if credential == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		identity, err := s.verifier.Verify(c.Request.Context(), credential)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("websocket upgrade error:", err)
			return
		}

		ns.serve(newConn(ws, identity))
	}
}

// SendToUser pushes a server-originated event to every live connection of a
// user in the given namespace. Returns the number of deliveries; zero live
// connections is not an error.
func (s *Server) SendToUser(namespace, userID, event string, payload any) int {
	ns := s.namespaces[namespace]
	if ns == nil {
		return 0
	}
	return ns.Publish(IdentityScope(userID), event, payload)
}

// SendToRoom pushes a server-originated event to every connection joined to a
// room in the given namespace.
func (s *Server) SendToRoom(namespace, roomID, event string, payload any) int {
	ns := s.namespaces[namespace]
	if ns == nil {
		return 0
	}
	return ns.Publish(RoomScope(roomID), event, payload)
}
