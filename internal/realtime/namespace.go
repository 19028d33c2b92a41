package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Client is the view of a connection the namespace routes to: a stable id,
// the verified identity, and a best-effort outbound send. The network conn
// itself is managed by Conn.
type Client interface {
	ID() ConnID
	Identity() Identity
	Send(frame []byte) bool
	Close()
}

// Namespace is one logically separate realtime surface (e.g. /admin, /user).
// Each namespace has its own registry and client set; namespaces share
// nothing but the server's verifier.
type Namespace struct {
	name     string
	registry *Registry

	mu      sync.RWMutex
	clients map[ConnID]Client
}

func newNamespace(name string) *Namespace {
	return &Namespace{
		name:     name,
		registry: NewRegistry(),
		clients:  make(map[ConnID]Client),
	}
}

// Name returns the namespace path, e.g. "/user".
func (ns *Namespace) Name() string { return ns.name }

// Attach makes a client routable: it is tracked by id and joined to its own
// identity scope.
func (ns *Namespace) Attach(c Client) {
	ns.mu.Lock()
	ns.clients[c.ID()] = c
	ns.mu.Unlock()

	ns.registry.Join(IdentityScope(c.Identity().UserID), c.ID())
}

// Detach removes a client from the namespace and from every scope it joined.
// Idempotent; safe to reach from more than one cleanup path.
func (ns *Namespace) Detach(c Client) {
	ns.mu.Lock()
	delete(ns.clients, c.ID())
	ns.mu.Unlock()

	ns.registry.LeaveAll(c.ID())
}

func (ns *Namespace) client(id ConnID) (Client, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	c, ok := ns.clients[id]
	return c, ok
}

// serve owns the connection from activation to cleanup. The read loop runs on
// the calling goroutine, so one connection's events are handled in order.
func (ns *Namespace) serve(conn *Conn) {
	conn.markActive()
	ns.Attach(conn)
	log.Printf("client connected on %s with id: %s", ns.name, conn.ID())

	go conn.writePump()
	defer func() {
		ns.Detach(conn)
		conn.Close()
		log.Printf("client disconnected on %s with id: %s", ns.name, conn.ID())
	}()

	conn.readLoop(func(raw []byte) {
		ns.HandleFrame(conn, raw)
	})
}

// HandleFrame demultiplexes one inbound frame to its event handler. Malformed
// frames and unknown events are dropped; the connection stays up.
func (ns *Namespace) HandleFrame(c Client, raw []byte) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return
	}
	switch f.Event {
	case EventJoinRoom:
		ns.handleJoinRoom(c, f.Data)
	case EventSendMessage:
		ns.handleSendMessage(c, f.Data)
	}
}

func (ns *Namespace) handleJoinRoom(c Client, data json.RawMessage) {
	var p JoinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		return
	}

	ns.registry.Join(RoomScope(p.RoomID), c.ID())

	// Acked to the joining connection only, not broadcast to the room.
	ack, ok := marshalFrame(EventJoinedRoom, JoinedRoomPayload{
		Success: true,
		Message: fmt.Sprintf("%s joined the room with roomId: %s", c.ID(), p.RoomID),
	})
	if ok {
		c.Send(ack)
	}
}

func (ns *Namespace) handleSendMessage(c Client, data json.RawMessage) {
	var p SendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	keys := destinationScopes(p)
	if len(keys) == 0 {
		return
	}
	frame, ok := marshalFrame(EventSendedMessage, SendedMessagePayload{
		From:    p.Sender,
		Message: p.Message,
	})
	if !ok {
		return
	}
	ns.fanOut(keys, frame)
}

// destinationScopes resolves the scope keys a send_message addresses. A room
// id or a receiver id is a destination in its own right; the sender's identity
// scope rides along so the sender's other live sessions observe the message
// too. No room and no receiver means no destination, and the event is dropped.
func destinationScopes(p SendMessagePayload) []ScopeKey {
	var keys []ScopeKey
	if p.RoomID != "" {
		keys = append(keys, RoomScope(p.RoomID))
	}
	if p.Receiver.ID != "" {
		keys = append(keys, IdentityScope(p.Receiver.ID))
	}
	if len(keys) == 0 {
		return nil
	}
	if p.Sender.ID != "" {
		keys = append(keys, IdentityScope(p.Sender.ID))
	}
	return keys
}

// fanOut delivers one frame to every connection resolved for the given scope
// keys, at most once per connection even when it matches several scopes.
// Connections that are gone or have a full buffer are skipped; there is no
// retry and no queueing. Returns the number of successful deliveries.
func (ns *Namespace) fanOut(keys []ScopeKey, frame []byte) int {
	seen := make(map[ConnID]struct{})
	delivered := 0
	for _, key := range keys {
		for _, id := range ns.registry.Resolve(key) {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			c, ok := ns.client(id)
			if !ok {
				continue
			}
			if c.Send(frame) {
				delivered++
			}
		}
	}
	return delivered
}

// Publish delivers a server-originated event to every connection in a scope.
// This is the push primitive the REST layer uses for notifications.
func (ns *Namespace) Publish(key ScopeKey, event string, payload any) int {
	frame, ok := marshalFrame(event, payload)
	if !ok {
		return 0
	}
	return ns.fanOut([]ScopeKey{key}, frame)
}
