package api

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akuaponik-iot/gateway/internal/actuator"
	"github.com/akuaponik-iot/gateway/internal/infrastructure/config"
	"github.com/akuaponik-iot/gateway/internal/infrastructure/logging"
	"github.com/akuaponik-iot/gateway/internal/telemetry"
)

// Live feed message types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"

	// wsSendBufferSize is the per-client outbound queue length.
	wsSendBufferSize = 256
)

// WSMessage is the envelope of every live feed frame, in both directions.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload selects feed channels and, optionally, ponds.
//
// An empty pond filter follows every pond. Ponds listed on subscribe are
// added to the filter; ponds listed on unsubscribe are removed from it.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
	Ponds    []int64  `json:"idkolam,omitempty"`
}

// inboundMessage is a client frame with its payload left undecoded.
type inboundMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// pondScoped is implemented by feed payloads that belong to one pond
// (telemetry.Reading, actuator.Event).
type pondScoped interface {
	Pond() int64
}

// feedChannels returns the channels a client may subscribe to.
func feedChannels() map[string]struct{} {
	channels := map[string]struct{}{telemetry.ChannelReading: {}}
	for _, kind := range actuator.Kinds {
		channels[kind.Channel()] = struct{}{}
	}
	return channels
}

// Hub fans out sensor readings and actuator events to live feed clients.
type Hub struct {
	cfg      config.WebSocketConfig
	logger   *logging.Logger
	channels map[string]struct{}

	mu      sync.RWMutex
	clients map[*feedClient]struct{}
}

// feedClient is one live feed connection and its subscription.
type feedClient struct {
	hub    *Hub
	conn   *websocket.Conn
	remote string
	send   chan []byte

	mu       sync.RWMutex
	closed   bool
	channels map[string]struct{}
	ponds    map[int64]struct{}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS middleware.
	CheckOrigin: func(*http.Request) bool { return true },
}

// NewHub creates a live feed hub. Call Run to tie its lifetime to a context.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:      cfg,
		logger:   logger,
		channels: feedChannels(),
		clients:  make(map[*feedClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*feedClient]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.shutdown()
		if c.conn != nil {
			c.conn.Close()
		}
	}
	if len(clients) > 0 {
		h.logger.Info("live feed closed", "clients", len(clients))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *feedClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("live feed client connected", "remote", c.remote, "clients", n)
}

func (h *Hub) unregister(c *feedClient) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	c.shutdown()
	h.logger.Debug("live feed client disconnected", "remote", c.remote, "clients", n)
}

// Broadcast queues payload for every client subscribed to channel.
// Payloads that belong to a pond only reach clients whose pond filter
// includes it. Broadcast never blocks; a client with a full queue misses
// the event.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(telemetry.TimestampLayout),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("encoding live feed event", "channel", channel, "error", err)
		return
	}

	pond, scoped := int64(0), false
	if p, ok := payload.(pondScoped); ok {
		pond, scoped = p.Pond(), true
	}

	h.mu.RLock()
	clients := slices.Collect(maps.Keys(h.clients))
	h.mu.RUnlock()

	var delivered, dropped int
	for _, c := range clients {
		if !c.wants(channel, pond, scoped) {
			continue
		}
		if c.deliver(data) {
			delivered++
		} else {
			dropped++
		}
	}

	if dropped > 0 {
		h.logger.Warn("live feed clients lagging", "channel", channel, "dropped", dropped)
	}
	if delivered > 0 {
		h.logger.Debug("live feed event sent", "channel", channel, "idkolam", pond, "recipients", delivered)
	}
}

// handleWebSocket upgrades GET /ws to a live feed connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &feedClient{
		hub:      s.hub,
		conn:     conn,
		remote:   r.RemoteAddr,
		send:     make(chan []byte, wsSendBufferSize),
		channels: make(map[string]struct{}),
		ponds:    make(map[int64]struct{}),
	}
	s.hub.register(c)

	go c.writeLoop(s.wsCfg)
	go c.readLoop(s.wsCfg)
}

// wants reports whether an event on channel for pond matches the subscription.
func (c *feedClient) wants(channel string, pond int64, scoped bool) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.channels[channel]; !ok {
		return false
	}
	if !scoped || len(c.ponds) == 0 {
		return true
	}
	_, ok := c.ponds[pond]
	return ok
}

// deliver queues data without blocking. It returns false when the client
// is gone or its queue is full.
func (c *feedClient) deliver(data []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// shutdown closes the send queue once, which ends writeLoop.
func (c *feedClient) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *feedClient) readLoop(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	idle := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	extend := func() error {
		return c.conn.SetReadDeadline(time.Now().Add(idle))
	}

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	extend() //nolint:errcheck // A failed deadline surfaces as a read error
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("live feed read failed", "remote", c.remote, "error", err)
			}
			return
		}
		// Client frames count as liveness too; some browsers never answer pings.
		extend() //nolint:errcheck // A failed deadline surfaces as a read error
		c.handleMessage(data)
	}
}

func (c *feedClient) writeLoop(cfg config.WebSocketConfig) {
	ticker := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	writeWait := time.Duration(cfg.PongTimeout) * time.Second
	write := func(kind int, data []byte) error {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				write(websocket.CloseMessage, nil) //nolint:errcheck // Connection is closing
				return
			}
			if err := write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *feedClient) handleMessage(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.replyError("", "invalid JSON message")
		return
	}

	switch msg.Type {
	case WSTypeSubscribe, WSTypeUnsubscribe:
		c.updateSubscription(msg)
	case WSTypePing:
		c.reply(msg.ID, WSTypePong, nil)
	default:
		c.replyError(msg.ID, "unknown message type: "+msg.Type)
	}
}

// updateSubscription applies a subscribe or unsubscribe request. A request
// naming an unknown channel is rejected as a whole.
func (c *feedClient) updateSubscription(msg inboundMessage) {
	var req WSSubscribePayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			c.replyError(msg.ID, "invalid "+msg.Type+" payload")
			return
		}
	}
	if len(req.Channels) == 0 && len(req.Ponds) == 0 {
		c.replyError(msg.ID, "channels or idkolam required")
		return
	}
	for _, ch := range req.Channels {
		if _, ok := c.hub.channels[ch]; !ok {
			c.replyError(msg.ID, "unknown channel: "+ch)
			return
		}
	}

	c.mu.Lock()
	if msg.Type == WSTypeSubscribe {
		for _, ch := range req.Channels {
			c.channels[ch] = struct{}{}
		}
		for _, p := range req.Ponds {
			c.ponds[p] = struct{}{}
		}
	} else {
		for _, ch := range req.Channels {
			delete(c.channels, ch)
		}
		for _, p := range req.Ponds {
			delete(c.ponds, p)
		}
	}
	state := WSSubscribePayload{
		Channels: slices.Sorted(maps.Keys(c.channels)),
		Ponds:    slices.Sorted(maps.Keys(c.ponds)),
	}
	c.mu.Unlock()

	c.hub.logger.Debug("live feed subscription changed",
		"remote", c.remote,
		"channels", state.Channels,
		"idkolam", state.Ponds,
	)
	c.reply(msg.ID, WSTypeResponse, state)
}

func (c *feedClient) reply(id, msgType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(telemetry.TimestampLayout),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.deliver(data)
}

func (c *feedClient) replyError(id, message string) {
	c.reply(id, WSTypeError, map[string]string{"message": message})
}
