package events

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/cueside/club-app/utils"
)

// Event types pushed to dashboard clients. Display-only: the database stays
// the single source of truth, clients re-read on demand.
const (
	EventSessionStart   = "session_start"
	EventSessionUpdate  = "session_update"
	EventSessionTick    = "session_tick"
	EventSessionSettled = "session_settled"
	EventTableUpdate    = "table_update"
	EventStockUpdate    = "stock_update"
	EventMemberUpdate   = "member_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds the connected dashboard clients (admin, staff) by role.
type Hub struct {
	clients map[*websocket.Conn]string
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient drops a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// Broadcast sends a message to every connected client. Writes are
// best-effort; a dead connection is unregistered on the next failure.
func Broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for conn := range hub.clients {
		if err := conn.WriteJSON(msg); err != nil {
			if utils.ErrorLogger != nil {
				utils.ErrorLogger.Printf("websocket write failed, dropping client: %v", err)
			}
			delete(hub.clients, conn)
			conn.Close()
		}
	}
}

func BroadcastSessionUpdate(data interface{}) {
	Broadcast(Message{Event: EventSessionUpdate, Data: data})
}

func BroadcastSessionTick(data interface{}) {
	Broadcast(Message{Event: EventSessionTick, Data: data})
}

func BroadcastStockUpdate(data interface{}) {
	Broadcast(Message{Event: EventStockUpdate, Data: data})
}
