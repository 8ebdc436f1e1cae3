package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
)

// writeWait es el tiempo máximo para escribir un mensaje a un cliente
const writeWait = 5 * time.Second

// Client es la parte de una conexión WebSocket que usa el hub
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// deadliner lo implementa *websocket.Conn
type deadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Hub reparte los eventos del quiz a todos los visores conectados
type Hub struct {
	clients    map[Client]bool
	broadcast  chan []byte
	register   chan Client
	unregister chan Client
	done       chan struct{}
	mutex      sync.RWMutex
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan Client),
		unregister: make(chan Client),
		done:       make(chan struct{}),
	}
}

// Run atiende registros y mensajes hasta que ctx se cancela, y entonces
// cierra todos los clientes.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mutex.Unlock()
			log.Printf("Cliente WebSocket conectado. Total: %d", n)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			n := len(h.clients)
			h.mutex.Unlock()
			log.Printf("Cliente WebSocket desconectado. Total: %d", n)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if err := send(client, message); err != nil {
					log.Printf("Error enviando mensaje WebSocket: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// send escribe con plazo para que un cliente lento no bloquee al hub
func send(client Client, message []byte) error {
	if d, ok := client.(deadliner); ok {
		if err := d.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
	}
	return client.WriteMessage(websocket.TextMessage, message)
}

// Register agrega un cliente. Devuelve false si el hub ya se detuvo.
func (h *Hub) Register(client Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount indica cuántos clientes hay conectados
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// BroadcastMessage encola un mensaje para todos los clientes. Nunca bloquea:
// si la cola está llena o el hub se detuvo, el mensaje se descarta.
func (h *Hub) BroadcastMessage(msgType string, data interface{}) {
	msg := Message{
		Type: msgType,
		Data: data,
	}

	msgData, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error serializando mensaje: %v", err)
		return
	}

	select {
	case h.broadcast <- msgData:
	case <-h.done:
	default:
		log.Printf("⚠️ Cola de WebSocket llena, se descarta el mensaje %s", msgType)
	}
}
