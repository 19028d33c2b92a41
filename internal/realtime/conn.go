package realtime

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ConnState tracks a connection through its lifecycle. Transitions only move
// forward; Closed is terminal.
type ConnState int32

const (
	// StateConnecting: transport open, credential not yet verified. A
	// connection whose handshake is rejected never gets a Conn value at all,
	// so in practice a Conn is born Authenticated.
	StateConnecting ConnState = iota
	// StateAuthenticated: identity verified, not yet routable.
	StateAuthenticated
	// StateActive: registered under its identity scope, processing events.
	StateActive
	// StateClosed: cleaned up; terminal.
	StateClosed
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 4096
	sendBuffer = 32
)

// Conn wraps one live websocket connection. The verified identity is assigned
// at handshake time and never changes. Outbound frames go through a buffered
// channel drained by writePump, so Send never blocks the caller.
type Conn struct {
	id       ConnID
	identity Identity
	ws       *websocket.Conn
	send     chan []byte
	done     chan struct{}
	state    atomic.Int32
}

func newConn(ws *websocket.Conn, identity Identity) *Conn {
	c := &Conn{
		id:       ConnID(uuid.NewString()),
		identity: identity,
		ws:       ws,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
	}
	c.state.Store(int32(StateAuthenticated))
	return c
}

// ID implements Client.
func (c *Conn) ID() ConnID { return c.id }

// Identity implements Client.
func (c *Conn) Identity() Identity { return c.identity }

// State returns the current lifecycle state.
func (c *Conn) State() ConnState { return ConnState(c.state.Load()) }

func (c *Conn) markActive() {
	c.state.CompareAndSwap(int32(StateAuthenticated), int32(StateActive))
}

// Send enqueues a frame for delivery. It reports false when the connection is
// closed or its buffer is full; the frame is dropped either way.
func (c *Conn) Send(frame []byte) bool {
	if c.State() == StateClosed {
		return false
	}
	select {
	case <-c.done:
		return false
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close transitions to Closed exactly once, no matter how many cleanup paths
// reach it (read error, write error, server-side eviction).
func (c *Conn) Close() {
	prev := c.state.Swap(int32(StateClosed))
	if ConnState(prev) == StateClosed {
		return
	}
	close(c.done)
	_ = c.ws.Close()
}

// writePump drains the outbound buffer and keeps the peer alive with pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// readLoop hands inbound frames to handle in arrival order. It returns when
// the peer goes away or Close is called.
func (c *Conn) readLoop(handle func(raw []byte)) {
	c.ws.SetReadLimit(readLimit)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		handle(raw)
	}
}
