package ws

import (
	"fmt"
	"log"
	"net/http"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
)

// Server is the global Socket.IO server instance
var Server *socketio.Server

// InitServer initializes the Socket.IO server. Storefronts connect after
// initiating a payment and join their order's room to receive the status
// push instead of polling.
func InitServer() error {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&polling.Transport{
				CheckOrigin: func(r *http.Request) bool {
					// Cross-origin admission is enforced by the CORS gate in
					// front of this handler.
					return true
				},
			},
			&websocket.Transport{
				CheckOrigin: func(r *http.Request) bool {
					return true
				},
			},
		},
	})

	server.OnConnect("/", func(s socketio.Conn) error {
		log.Printf("[WebSocket] Client connected: %s", s.ID())
		s.Emit("connected", map[string]interface{}{
			"ok": true,
		})
		return nil
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Printf("[WebSocket] Client disconnected: %s, reason: %s", s.ID(), reason)
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.Printf("[WebSocket] Error for client %s: %v", s.ID(), e)
	})

	server.OnEvent("/", "subscribe:order", handleSubscribeOrder)
	server.OnEvent("/", "unsubscribe:order", handleUnsubscribeOrder)

	go func() {
		if err := server.Serve(); err != nil {
			log.Fatalf("[WebSocket] Server error: %v", err)
		}
	}()

	Server = server
	log.Println("[WebSocket] Socket.IO server initialized")
	return nil
}

// handleSubscribeOrder joins the client to its order's room
func handleSubscribeOrder(s socketio.Conn, data interface{}) {
	orderID, ok := parseOrderID(data)
	if !ok {
		s.Emit("error", map[string]interface{}{
			"message": "subscribe:order requires an orderId",
		})
		return
	}

	room := orderRoom(orderID)
	s.Join(room)
	log.Printf("[WebSocket] Client %s joined %s", s.ID(), room)
	s.Emit("subscribed", map[string]interface{}{
		"orderId": orderID,
	})
}

// handleUnsubscribeOrder removes the client from its order's room
func handleUnsubscribeOrder(s socketio.Conn, data interface{}) {
	orderID, ok := parseOrderID(data)
	if !ok {
		return
	}
	s.Leave(orderRoom(orderID))
}

// parseOrderID extracts orderId from the event payload. Socket.IO delivers
// JSON numbers as float64.
func parseOrderID(data interface{}) (int, bool) {
	dataMap, ok := data.(map[string]interface{})
	if !ok {
		return 0, false
	}
	idFloat, ok := dataMap["orderId"].(float64)
	if !ok || idFloat <= 0 {
		return 0, false
	}
	return int(idFloat), true
}

func orderRoom(orderID int) string {
	return fmt.Sprintf("order:%d", orderID)
}

// BroadcastToRoom broadcasts a message to all clients in a room
func BroadcastToRoom(room string, event string, data interface{}) {
	if Server != nil {
		Server.BroadcastToRoom("/", room, event, data)
	}
}
