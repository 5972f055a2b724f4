package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"munjiz/internal/logging"
)

const maxConnections = 10

// Event types pushed to the browser.
const (
	EventNotification      = "notification"
	EventPopup             = "popup"
	EventPopupClosed       = "popup_closed"
	EventChime             = "chime"
	EventNative            = "native"
	EventRequestPermission = "request_permission"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Permission mirrors the browser's Notification.permission.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

var ErrInvalidPermission = errors.New("services: invalid notification permission")

func ParsePermission(s string) (Permission, error) {
	switch p := Permission(s); p {
	case PermissionDefault, PermissionGranted, PermissionDenied:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPermission, s)
	}
}

// Conn is the part of *websocket.Conn the hub uses.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Hub tracks the browser tabs connected over WebSocket and the
// notification permission they report.
type Hub struct {
	mu          sync.Mutex
	connections map[Conn]bool
	permission  Permission
	prompted    bool
	logger      *logrus.Entry
}

func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		connections: make(map[Conn]bool),
		permission:  PermissionDefault,
		logger:      logger.Component("ws"),
	}
}

// AddConnection registers conn. The first tab to connect while the
// permission is still undecided is asked once to prompt the user.
func (h *Hub) AddConnection(conn Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.connections) >= maxConnections {
		h.logger.Warnf("Max connections reached (%d)", maxConnections)
		return false
	}
	h.connections[conn] = true
	h.logger.Infof("Added WebSocket connection (total: %d)", len(h.connections))

	if h.permission == PermissionDefault && !h.prompted {
		h.prompted = true
		h.writeLocked(conn, Event{Type: EventRequestPermission})
	}
	return true
}

func (h *Hub) RemoveConnection(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[conn]; ok {
		delete(h.connections, conn)
		h.logger.Infof("Removed WebSocket connection (remaining: %d)", len(h.connections))
	}
}

// Broadcast sends ev to every tab, dropping tabs that fail.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.connections {
		h.writeLocked(conn, ev)
	}
}

func (h *Hub) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

func (h *Hub) Permission() Permission {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.permission
}

func (h *Hub) SetPermission(p Permission) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.permission != p {
		h.logger.Infof("Notification permission: %s -> %s", h.permission, p)
	}
	h.permission = p
}

type clientMessage struct {
	Type       string `json:"type"`
	Permission string `json:"permission"`
}

// Serve reads messages from conn until it closes. Tabs report permission
// changes as {"type":"permission","permission":"granted"}.
func (h *Hub) Serve(conn Conn) {
	if !h.AddConnection(conn) {
		_ = conn.Close()
		return
	}
	defer func() {
		h.RemoveConnection(conn)
		_ = conn.Close()
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warnf("WebSocket read error: %v", err)
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debugf("Ignoring malformed message: %v", err)
			continue
		}
		if msg.Type != "permission" {
			continue
		}
		p, err := ParsePermission(msg.Permission)
		if err != nil {
			h.logger.Debugf("Ignoring permission message: %v", err)
			continue
		}
		h.SetPermission(p)
	}
}

func (h *Hub) writeLocked(conn Conn, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Errorf("Failed to encode %s event: %v", ev.Type, err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.logger.Errorf("Failed to send WebSocket message: %v", err)
		delete(h.connections, conn)
		_ = conn.Close()
	}
}
