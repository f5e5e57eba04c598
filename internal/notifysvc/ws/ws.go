package ws

import (
	"encoding/json"
	"sync"

	"github.com/fannyleague/fanny-services/internal/comm"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Hub tracks websocket connections and which user each socket subscribed
// for. Clients subscribe with their user id; they receive targeted duel
// notices plus every broadcast round event. They never recompute game
// state themselves.
type Hub struct {
	connMap sync.Map // socketId -> *websocket.Conn
	userMap sync.Map // socketId -> userId
	writeMu sync.Mutex
}

func NewHub() *Hub {
	return &Hub{}
}

// SocketMessage handles a message from a web client.
func (h *Hub) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "subscribe":
		h.handleSubscribe(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

func (h *Hub) handleSubscribe(socketId string, msg *comm.WSMessage) {
	var payload struct {
		UserId string `json:"user_id"`
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("Error: malformed subscribe payload %s", err)
		return
	}
	if payload.UserId == "" {
		log.Error("Invalid subscribe payload: missing user id")
		return
	}
	h.userMap.Store(socketId, payload.UserId)
	log.Infof("socket %s subscribed for user %s", socketId, payload.UserId)
}

func (h *Hub) StoreConnection(socketId string, conn *websocket.Conn) {
	h.connMap.Store(socketId, conn)
}

func (h *Hub) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := h.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (h *Hub) HandleDisconnect(socketId string) {
	h.connMap.Delete(socketId)
	h.userMap.Delete(socketId)
}

// UserSockets lists the socket ids subscribed for a user.
func (h *Hub) UserSockets(userId string) []string {
	var sockets []string
	h.userMap.Range(func(key, value interface{}) bool {
		if value.(string) == userId {
			sockets = append(sockets, key.(string))
		}
		return true // continue iterating
	})
	return sockets
}

// Send writes one message to one socket.
func (h *Hub) Send(socketId string, payload []byte) {
	conn, ok := h.GetConnection(socketId)
	if !ok {
		return
	}
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Errorf("Error writing to socket %s: %v", socketId, err)
	}
}

// Broadcast writes one message to every connected socket.
func (h *Hub) Broadcast(payload []byte) {
	h.connMap.Range(func(key, value interface{}) bool {
		h.Send(key.(string), payload)
		return true
	})
}
