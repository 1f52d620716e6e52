package stream

// Difusión en vivo de observaciones por WebSocket. Un hub central mantiene
// los clientes conectados y les reenvía cada evento serializado a JSON.
// Clientes lentos se desconectan en vez de bloquear el broadcast.

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nmoreno/courtpulse/internal/domain"
)

// EventType clasifica los eventos del stream.
type EventType string

const (
	EventObservation EventType = "observation"
	EventTrigger     EventType = "trigger"
	EventResult      EventType = "result"
	EventHeartbeat   EventType = "heartbeat"
)

// Event es el sobre que reciben los clientes.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

const (
	sendBuffer     = 64
	heartbeatEvery = 30 * time.Second
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
)

// Hub gestiona las conexiones WebSocket y el fan-out de eventos.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client // uuid → cliente
	events   chan Event
	upgrader websocket.Upgrader
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// NewHub crea un hub sin clientes. Hay que arrancar Run en una goroutine.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		events:  make(chan Event, 256),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Run ejecuta el loop de fan-out hasta que el contexto se cancele.
func (h *Hub) Run(ctx context.Context) {
	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case ev := <-h.events:
			h.fanOut(ev)
		case <-heartbeat.C:
			h.fanOut(Event{
				Type:      EventHeartbeat,
				Timestamp: time.Now(),
				Data:      map[string]int{"clients": h.ClientCount()},
			})
		}
	}
}

// Broadcast difunde una observación. Implementa monitor.Broadcaster.
// Los triggers salen con su propio tipo de evento.
func (h *Hub) Broadcast(obs domain.GameObservation) {
	typ := EventObservation
	if obs.TriggerFlag {
		typ = EventTrigger
	}
	h.enqueue(Event{Type: typ, Timestamp: time.Now(), Data: obs})
}

// BroadcastResult difunde el cierre de un partido.
func (h *Hub) BroadcastResult(res domain.GameResult) {
	h.enqueue(Event{Type: EventResult, Timestamp: time.Now(), Data: res})
}

// ClientCount devuelve el número de clientes conectados.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS hace el upgrade HTTP → WebSocket y registra el cliente.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()
	slog.Info("stream client connected", "client_id", c.id, "total", total)

	go c.writePump()
	go h.readPump(c)
}

// --- internos ---

func (h *Hub) enqueue(ev Event) {
	select {
	case h.events <- ev:
	default:
		slog.Warn("stream backlog full, dropping event", "type", ev.Type)
	}
}

func (h *Hub) fanOut(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("stream marshal failed", "type", ev.Type, "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- data:
		default:
			// buffer lleno: cliente demasiado lento
			close(c.send)
			delete(h.clients, id)
			slog.Info("stream client dropped", "client_id", id)
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}

// readPump descarta lo que envíe el cliente (el stream es unidireccional)
// pero mantiene vivo el pong handler.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.drop(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("stream read error", "client_id", c.id, "err", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ping := time.NewTicker(pongWait * 9 / 10)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
