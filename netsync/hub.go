package netsync

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pthm-cable/sonar/sonar"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 16
	sendBuffer     = 32
)

// Submitter receives decoded updates. *sonar.Controller implements it.
type Submitter interface {
	Submit(sonar.Update)
}

// HubOptions configures keepalive timing and logging.
type HubOptions struct {
	PingPeriod time.Duration // must be shorter than ReadWait
	ReadWait   time.Duration
	Logger     *slog.Logger
}

type message struct {
	from string // peer id, empty for local publishes
	data []byte
}

// Hub relays sonar States between the local controller and connected peers.
// Every state received from a peer is submitted locally and forwarded to the
// other peers.
type Hub struct {
	codec    Codec
	target   Submitter
	opts     HubOptions
	upgrader websocket.Upgrader

	register   chan *peer
	unregister chan *peer
	broadcast  chan message
	done       chan struct{}

	mu    sync.RWMutex
	peers map[string]*peer

	last    State
	hasLast bool
}

// NewHub creates a hub. Call Run before accepting connections.
func NewHub(codec Codec, target Submitter, opts HubOptions) *Hub {
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 54 * time.Second
	}
	if opts.ReadWait <= opts.PingPeriod {
		opts.ReadWait = opts.PingPeriod * 10 / 9
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Hub{
		codec:  codec,
		target: target,
		opts:   opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		register:   make(chan *peer),
		unregister: make(chan *peer),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
		peers:      make(map[string]*peer),
	}
}

// Run dispatches messages until ctx is cancelled, then disconnects every peer.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case p := <-h.register:
			h.mu.Lock()
			h.peers[p.id] = p
			h.mu.Unlock()
			h.opts.Logger.Info("peer connected", "peer", p.id)

		case p := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.peers[p.id]; ok {
				delete(h.peers, p.id)
				close(p.send)
			}
			h.mu.Unlock()
			h.opts.Logger.Info("peer disconnected", "peer", p.id)

		case m := <-h.broadcast:
			h.mu.RLock()
			for id, p := range h.peers {
				if id == m.from {
					continue
				}
				select {
				case p.send <- m.data:
				default:
					h.opts.Logger.Warn("peer send buffer full, dropping state", "peer", id)
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.mu.Lock()
			for id, p := range h.peers {
				delete(h.peers, id)
				close(p.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Publish sends the local state to every peer if it changed since the last call.
// It never blocks the caller.
func (h *Hub) Publish(s State) {
	if h.hasLast && h.codec.Equal(h.last, s) {
		return
	}
	h.last, h.hasLast = s, true
	select {
	case h.broadcast <- message{data: h.codec.Encode(s)}:
	default:
		h.opts.Logger.Warn("broadcast queue full, dropping state")
	}
}

// Peers returns the number of connected peers.
func (h *Hub) Peers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// ServeHTTP upgrades the request to a websocket and attaches it as a peer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.opts.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	h.attach(conn)
}

// Connect dials a remote hub and attaches the connection as a peer.
func (h *Hub) Connect(ctx context.Context, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", url, err)
	}
	h.attach(conn)
	return nil
}

func (h *Hub) attach(conn *websocket.Conn) {
	p := &peer{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	select {
	case h.register <- p:
	case <-h.done:
		conn.Close()
		return
	}

	go p.writePump()
	go p.readPump()
}

// peer is one websocket connection.
type peer struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump decodes incoming states and hands them to the hub.
func (p *peer) readPump() {
	defer func() {
		select {
		case p.hub.unregister <- p:
		case <-p.hub.done:
		}
		p.conn.Close()
	}()

	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(p.hub.opts.ReadWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(p.hub.opts.ReadWait))
		return nil
	})

	for {
		kind, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				p.hub.opts.Logger.Warn("websocket read failed", "peer", p.id, "error", err)
			}
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}

		s, err := p.hub.codec.Decode(data)
		if err != nil {
			p.hub.opts.Logger.Warn("dropping malformed state", "peer", p.id, "error", err)
			continue
		}
		p.hub.target.Submit(s.Update())

		select {
		case p.hub.broadcast <- message{from: p.id, data: data}:
		case <-p.hub.done:
			return
		}
	}
}

// writePump sends queued states and keepalive pings.
func (p *peer) writePump() {
	ticker := time.NewTicker(p.hub.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case data, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
