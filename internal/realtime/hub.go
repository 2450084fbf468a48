package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/campus/internal/auth/identity"
	"github.com/aussiebroadwan/campus/pkg/slogx"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	handshakeTimeout = 10 * time.Second
	maxFrameSize     = 64 << 10
	sendBuffer       = 32
)

// Hub owns every authenticated real-time connection. Connections are
// indexed by id and by principal identifier so messages can be pushed to a
// user wherever they are connected.
type Hub struct {
	Bridge *Bridge
	Logger *slog.Logger

	// HandshakeTimeout bounds the wait for the CONNECT frame.
	HandshakeTimeout time.Duration

	upgrader websocket.Upgrader

	mu     sync.RWMutex
	conns  map[string]*conn
	byUser map[string]map[string]*conn
	closed bool
}

// NewHub creates a hub that authenticates connections with bridge.
// checkOrigin may be nil to accept any origin.
func NewHub(bridge *Bridge, logger *slog.Logger, checkOrigin func(*http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		Bridge:           bridge,
		Logger:           logger,
		HandshakeTimeout: handshakeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		conns:  make(map[string]*conn),
		byUser: make(map[string]map[string]*conn),
	}
}

type outbound struct {
	frame Frame
	last  bool // close the connection once written
}

type conn struct {
	id        string
	principal identity.Principal
	ws        *websocket.Conn
	log       *slog.Logger

	send chan outbound
	done chan struct{}
	once sync.Once

	// subs is guarded by Hub.mu.
	subs map[string]struct{}
}

func (c *conn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// enqueue hands f to the writer. A client that cannot keep up is dropped
// rather than allowed to block the sender.
func (c *conn) enqueue(f Frame, last bool) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- outbound{frame: f, last: last}:
		return true
	case <-c.done:
		return false
	default:
		c.log.Warn("realtime send buffer full, dropping connection")
		c.close()
		return false
	}
}

// ServeHTTP upgrades the request and runs the connection until it closes.
// The first frame must be an authenticated CONNECT.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Debug("websocket upgrade failed", "err", err)
		return
	}
	ws.SetReadLimit(maxFrameSize)

	ctx, p, err := h.handshake(r.Context(), ws)
	if err != nil {
		log.Warn("realtime handshake rejected", "err", err)
		reject(ws, "authentication failed")
		return
	}

	c := &conn{
		id:        uuid.NewString(),
		principal: p,
		ws:        ws,
		log:       slogx.FromContext(ctx),
		send:      make(chan outbound, sendBuffer),
		done:      make(chan struct{}),
		subs:      make(map[string]struct{}),
	}
	c.log = c.log.With("conn_id", c.id)

	if !h.register(c) {
		reject(ws, "server shutting down")
		return
	}
	defer h.unregister(c)

	go h.writeLoop(c)
	defer c.close()

	c.enqueue(Frame{Command: CmdConnected, Headers: map[string]string{
		HeaderUserName: p.Identifier,
		HeaderSession:  c.id,
	}}, false)
	c.log.Info("realtime connection established")

	if graceful := h.readLoop(c); graceful {
		// Let the writer flush the DISCONNECT receipt before closing.
		select {
		case <-c.done:
		case <-time.After(writeWait):
		}
	}
	c.log.Info("realtime connection closed")
}

func (h *Hub) handshake(ctx context.Context, ws *websocket.Conn) (context.Context, identity.Principal, error) {
	timeout := h.HandshakeTimeout
	if timeout <= 0 {
		timeout = handshakeTimeout
	}
	_ = ws.SetReadDeadline(time.Now().Add(timeout))

	var first Frame
	if err := ws.ReadJSON(&first); err != nil {
		return ctx, identity.Principal{}, &HandshakeError{Err: err}
	}
	return h.Bridge.Handshake(ctx, first)
}

// reject answers a refused handshake with an ERROR frame and closes. No
// writer goroutine exists yet so writing directly is safe.
func reject(ws *websocket.Conn, message string) {
	deadline := time.Now().Add(writeWait)
	_ = ws.SetWriteDeadline(deadline)
	_ = ws.WriteJSON(errorFrame(message))
	_ = ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message), deadline)
	_ = ws.Close()
}

// readLoop reads client frames until the connection ends. It reports true
// when the client asked to disconnect and a final frame is still queued.
func (h *Hub) readLoop(c *conn) bool {
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f Frame
		if err := c.ws.ReadJSON(&f); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				c.log.Debug("realtime read ended", "err", err)
			}
			return false
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		if f.Command == CmdDisconnect {
			id := f.Header(HeaderReceipt)
			return id != "" && c.enqueue(receiptFrame(id), true)
		}
		h.dispatch(c, f)
	}
}

// dispatch handles one client frame after the handshake.
func (h *Hub) dispatch(c *conn, f Frame) {
	dest := f.Header(HeaderDestination)

	switch f.Command {
	case CmdSubscribe:
		if dest == "" {
			c.enqueue(errorFrame("SUBSCRIBE requires a destination"), false)
			return
		}
		h.subscribe(c, dest)

	case CmdUnsubscribe:
		h.unsubscribe(c, dest)

	case CmdSend:
		if dest == "" {
			c.enqueue(errorFrame("SEND requires a destination"), false)
			return
		}
		h.publish(dest, f.Body, c.principal.Identifier)

	case CmdConnect:
		c.enqueue(errorFrame("already connected"), false)
		return

	default:
		c.enqueue(errorFrame("unknown command "+string(f.Command)), false)
		return
	}

	if id := f.Header(HeaderReceipt); id != "" {
		c.enqueue(receiptFrame(id), false)
	}
}

func (h *Hub) writeLoop(c *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case out := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(out.frame); err != nil {
				c.log.Debug("realtime write failed", "err", err)
				return
			}
			if out.last {
				_ = c.ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				return
			}

		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

func (h *Hub) register(c *conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.conns[c.id] = c
	user := h.byUser[c.principal.Identifier]
	if user == nil {
		user = make(map[string]*conn)
		h.byUser[c.principal.Identifier] = user
	}
	user[c.id] = c
	return true
}

func (h *Hub) unregister(c *conn) {
	h.mu.Lock()
	delete(h.conns, c.id)
	if user := h.byUser[c.principal.Identifier]; user != nil {
		delete(user, c.id)
		if len(user) == 0 {
			delete(h.byUser, c.principal.Identifier)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) subscribe(c *conn, dest string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.subs[dest] = struct{}{}
}

func (h *Hub) unsubscribe(c *conn, dest string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(c.subs, dest)
}

// publish delivers body to every connection subscribed to dest.
func (h *Hub) publish(dest, body, sender string) int {
	h.mu.RLock()
	targets := make([]*conn, 0)
	for _, c := range h.conns {
		if _, ok := c.subs[dest]; ok {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	return deliver(targets, dest, body, sender)
}

// SendToUser pushes a MESSAGE to every open connection of identifier and
// returns how many accepted it.
func (h *Hub) SendToUser(identifier, dest, body string) int {
	h.mu.RLock()
	targets := make([]*conn, 0, len(h.byUser[identifier]))
	for _, c := range h.byUser[identifier] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	return deliver(targets, dest, body, "")
}

func deliver(targets []*conn, dest, body, sender string) int {
	delivered := 0
	for _, c := range targets {
		headers := map[string]string{HeaderDestination: dest}
		if sender != "" {
			headers[HeaderSender] = sender
		}
		if c.enqueue(Frame{Command: CmdMessage, Headers: headers, Body: body}, false) {
			delivered++
		}
	}
	return delivered
}

// ConnectionCount returns the number of authenticated connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close drops every connection and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
	if h.Logger != nil {
		h.Logger.Info("realtime hub closed", "connections", len(conns))
	}
}
