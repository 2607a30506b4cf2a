package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"casechat-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// Hub fans document lifecycle pushes out to connected clients, keyed by
// actor id (multi-device: one actor may hold several connections). Redis
// pub/sub relays pushes across instances.
type Hub struct {
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ActorId] = append(h.clients[client.ActorId], client)
			h.mu.Unlock()
			h.logger.Info("hub", "Client registered", map[string]interface{}{"actor_id": client.ActorId})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ActorId]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.ActorId] = append(clients[:i], clients[i+1:]...)
						client.shutdown()
						break
					}
				}
				if len(h.clients[client.ActorId]) == 0 {
					delete(h.clients, client.ActorId)
					h.logger.Info("hub", "Client unregistered", map[string]interface{}{"actor_id": client.ActorId})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast pushes an event to every connected client, local and remote.
func (h *Hub) Broadcast(eventType string, data map[string]interface{}) {
	payload, _ := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": data,
	})

	h.deliverLocalBroadcast(payload)

	if h.rdb != nil {
		wire, _ := json.Marshal(clusterMessage{TargetActorId: "*", Message: payload})
		h.rdb.Publish(context.Background(), clusterChannel, wire)
	}
}

// Send pushes an event to one actor's connections on every instance.
func (h *Hub) Send(actorId, eventType string, data map[string]interface{}) {
	payload, _ := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": data,
	})

	h.deliverLocal(actorId, payload)

	if h.rdb != nil {
		wire, _ := json.Marshal(clusterMessage{TargetActorId: actorId, Message: payload})
		h.rdb.Publish(context.Background(), clusterChannel, wire)
	}
}

type clusterMessage struct {
	TargetActorId string          `json:"target_actor_id"`
	Message       json.RawMessage `json:"message"`
}

func (h *Hub) deliverLocal(actorId string, payload []byte) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[actorId]...)
	h.mu.RUnlock()

	for _, client := range clients {
		h.deliver(client, payload)
	}
}

func (h *Hub) deliverLocalBroadcast(payload []byte) {
	h.mu.RLock()
	all := make([]*Client, 0, len(h.clients))
	for _, clients := range h.clients {
		all = append(all, clients...)
	}
	h.mu.RUnlock()

	for _, client := range all {
		h.deliver(client, payload)
	}
}

// deliver hands one payload to one client. A full buffer retires the client;
// removal from the map stays with Run, and the unregister handoff happens
// outside any hub lock.
func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case <-client.done:
	case client.Send <- payload:
	default:
		h.logger.Warn("hub", "Client buffer full, dropping connection", map[string]interface{}{"actor_id": client.ActorId})
		client.shutdown()
		go func() { h.unregister <- client }()
	}
}

// subscribeToRedis relays cluster pushes into local connections. Every
// instance subscribes to one channel; messages carry the target actor or a
// wildcard to fan out.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterMessage
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("hub", "Malformed cluster message", map[string]interface{}{"error": err.Error()})
			continue
		}

		if payload.TargetActorId == "*" {
			h.deliverLocalBroadcast(payload.Message)
			continue
		}
		h.deliverLocal(payload.TargetActorId, payload.Message)
	}
}
