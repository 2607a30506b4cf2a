package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs wires one upgraded connection into the hub.
func ServeWs(hub *Hub, c *websocket.Conn, actorId string) {
	client := &Client{
		Hub:     hub,
		Conn:    c,
		ActorId: actorId,
		Send:    make(chan []byte, 256),
		done:    make(chan struct{}),
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // runs in the handler goroutine
}
