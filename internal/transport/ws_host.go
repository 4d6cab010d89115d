package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tickworld/internal/config"
	"tickworld/internal/gamelog"
)

// WSHost binds an HTTP server upgrading every request to a websocket
// connection, up to config.MaxPeers concurrent peers, mirroring the
// teacher's gorilla/websocket hub/upgrade pattern (main.go, hub.go) but
// speaking the fixed-layout binary protocol of internal/wire instead of
// JSON.
type WSHost struct {
	mu       sync.Mutex
	peers    map[PeerID]*wsPeer
	nextPeer PeerID

	events chan Event
	server *http.Server
	closed bool
}

type wsPeer struct {
	conn *websocket.Conn
	mu   sync.Mutex // guards writes; gorilla connections are not write-concurrent-safe
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewWSHost binds addr (e.g. ":7777") and starts serving upgrade requests.
// It returns a plain error on bind failure; the caller, internal/app, wraps
// it with simerr.ErrTransport (spec.md §7's TRANSPORT_ERROR kind), so this
// package stays collaborator-only.
func NewWSHost(addr string) (*WSHost, error) {
	h := &WSHost{
		peers:  make(map[PeerID]*wsPeer),
		events: make(chan Event, 1024),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleUpgrade)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}

	h.server = &http.Server{Handler: mux}
	go func() {
		if err := h.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			gamelog.Log.WithError(err).Error("transport server stopped unexpectedly")
		}
	}()

	return h, nil
}

func (h *WSHost) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if len(h.peers) >= config.MaxPeers {
		h.mu.Unlock()
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}
	h.mu.Unlock()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		gamelog.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.nextPeer++
	id := h.nextPeer
	h.peers[id] = &wsPeer{conn: conn}
	h.mu.Unlock()

	h.events <- Event{Kind: EventConnect, Peer: id}

	go h.readLoop(id, conn)
}

func (h *WSHost) readLoop(id PeerID, conn *websocket.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			h.disconnect(id)
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		if len(data) == 0 {
			continue
		}
		// The client tags its logical channel in the first byte of the
		// websocket frame, ahead of the wire.MessageType byte, so a single
		// TCP-backed connection can carry both RELIABLE and UNRELIABLE
		// traffic (spec.md §6's two-channel contract).
		ch := Channel(data[0])
		payload := data[1:]
		h.events <- Event{Kind: EventReceive, Peer: id, Channel: ch, Data: payload}
	}
}

func (h *WSHost) disconnect(id PeerID) {
	h.mu.Lock()
	peer, ok := h.peers[id]
	if ok {
		delete(h.peers, id)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	peer.conn.Close()
	h.events <- Event{Kind: EventDisconnect, Peer: id}
}

func (h *WSHost) Events() <-chan Event { return h.events }

func (h *WSHost) Send(peer PeerID, ch Channel, data []byte) error {
	h.mu.Lock()
	p, ok := h.peers[peer]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("transport: unknown peer %d", peer)
	}
	framed := append([]byte{byte(ch)}, data...)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return p.conn.WriteMessage(websocket.BinaryMessage, framed)
}

func (h *WSHost) Broadcast(ch Channel, data []byte) {
	h.mu.Lock()
	peers := make([]*wsPeer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()

	framed := append([]byte{byte(ch)}, data...)
	for _, p := range peers {
		p.mu.Lock()
		p.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		p.conn.WriteMessage(websocket.BinaryMessage, framed)
		p.mu.Unlock()
	}
}

func (h *WSHost) NowMs() int64 { return SystemClockMs() }

func (h *WSHost) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	peers := make([]*wsPeer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()

	for _, p := range peers {
		p.conn.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return h.server.Shutdown(ctx)
}
