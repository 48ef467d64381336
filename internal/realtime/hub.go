package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 25 * time.Second
	sendBufferSize = 16
)

type client struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub keeps the open websocket connections per user and fans out auth and row change events.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}

	upgrader       websocket.Upgrader
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewHub(allowedOrigins []string, metricsManager *metrics.Manager) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &Hub{
		clients: make(map[int64]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (h *Hub) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/realtime", h.HandleConnect).Methods("GET").Name("realtime")
}

func (h *Hub) HandleConnect(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader already replied to the client
		log.Debugf("realtime upgrade for user %d: %s", userID, err)
		return
	}

	c := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
	h.register(c)
	go h.writeLoop(c)

	// read loop ends on client close or error
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unregister(c)
			return
		}
	}
}

// NotifyRowChange pushes a row change of one of the user tables.
func (h *Hub) NotifyRowChange(userID int64, table, action string, rowID int64) {
	h.broadcast(userID, Message{
		Type:      MessageTypeRowChange,
		Table:     table,
		Action:    action,
		RowID:     rowID,
		Timestamp: h.now(),
	})
}

// NotifyAuthEvent has the auth.Listener signature.
func (h *Hub) NotifyAuthEvent(userID int64, event auth.Event) {
	h.broadcast(userID, Message{
		Type:      MessageTypeAuth,
		Event:     event.String(),
		Timestamp: h.now(),
	})
}

func (h *Hub) ConnectionsCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[int64]map[*client]struct{})
	h.mu.Unlock()

	for _, set := range all {
		for c := range set {
			close(c.send)
			h.metricsManager.GaugeRealtimeConnections.Dec()
		}
	}
}

func (h *Hub) broadcast(userID int64, msg Message) {
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("realtime marshal message for user %d: %s", userID, err)
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients[userID] {
		select {
		case c.send <- msgBytes:
			h.metricsManager.CounterRealtimeMessages.Inc()
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Warnf("realtime client of user %d too slow, dropping it", userID)
		h.unregister(c)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
	h.mu.Unlock()

	h.metricsManager.GaugeRealtimeConnections.Inc()
	log.Debugf("realtime client connected for user %d", c.userID)
}

// unregister is safe to call more than once for the same client.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	set := h.clients[c.userID]
	_, found := set[c]
	if found {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()

	if found {
		close(c.send)
		h.metricsManager.GaugeRealtimeConnections.Dec()
		log.Debugf("realtime client disconnected for user %d", c.userID)
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.unregister(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}
