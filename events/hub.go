package events

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/platefront/rms-backend/utils"
)

// Event types pushed to connected dashboards and terminals. Emission is
// fire-and-forget after commit; a failed send only drops that client.
const (
	EventOrderClosed  = "order_closed"
	EventOrderVoided  = "order_voided"
	EventShiftClosed  = "shift_closed"
	EventSplitCreated = "split_created"
	EventStockLow     = "stock_low"
	EventTableUpdate  = "table_update"
	EventKitchenItem  = "kitchen_item_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every subscribed websocket client keyed by role.
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

// UnregisterClient drops and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// Broadcast sends a message to every client. Dead connections are removed.
func Broadcast(event string, data interface{}) {
	msg := Message{Event: event, Data: data}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	for conn := range hub.clients {
		if err := conn.WriteJSON(msg); err != nil {
			if utils.ErrorLogger != nil {
				utils.ErrorLogger.Printf("events: dropping client: %v", err)
			}
			delete(hub.clients, conn)
			conn.Close()
		}
	}
}

func OrderClosed(data interface{})  { Broadcast(EventOrderClosed, data) }
func OrderVoided(data interface{})  { Broadcast(EventOrderVoided, data) }
func ShiftClosed(data interface{})  { Broadcast(EventShiftClosed, data) }
func SplitCreated(data interface{}) { Broadcast(EventSplitCreated, data) }
func StockLow(data interface{})     { Broadcast(EventStockLow, data) }
func TableUpdate(data interface{})  { Broadcast(EventTableUpdate, data) }
func KitchenItem(data interface{})  { Broadcast(EventKitchenItem, data) }
